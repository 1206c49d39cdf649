package operations

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github/chapool/go-relayer/internal/api"
	"github/chapool/go-relayer/internal/util"
)

// EntryPointsResponse lists the bundler's verifier entry points, preferred
// first.
type EntryPointsResponse struct {
	EntryPoints []string `json:"entryPoints"`
}

func GetEntryPointsRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Operations.GET("/entry-points", getEntryPointsHandler(s))
}

func getEntryPointsHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		log := util.LogFromContext(ctx)

		entryPoints, err := s.Bundler.SupportedEntryPoints(ctx)
		if err != nil {
			log.Debug().Err(err).Msg("Failed to get supported entry points")
			return err
		}

		hexed := make([]string, 0, len(entryPoints))
		for _, entryPoint := range entryPoints {
			hexed = append(hexed, entryPoint.Hex())
		}

		return c.JSON(http.StatusOK, &EntryPointsResponse{EntryPoints: hexed})
	}
}
