package common

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github/chapool/go-relayer/internal/api"
	"github/chapool/go-relayer/internal/util"
)

func GetReadyRoute(s *api.Server) *echo.Route {
	return s.Router.Management.GET("/ready", getReadyHandler(s))
}

// getReadyHandler is the readiness probe; it checks that the bundler
// connection answers.
func getReadyHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		log := util.LogFromContext(ctx)

		if _, err := s.Bundler.ChainID(ctx); err != nil {
			log.Warn().Err(err).Msg("Readiness check failed against bundler")
			return c.String(http.StatusServiceUnavailable, "Not ready")
		}

		return c.String(http.StatusOK, "Ready")
	}
}
