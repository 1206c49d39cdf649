package operations

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/labstack/echo/v4"
	"github/chapool/go-relayer/internal/api"
	"github/chapool/go-relayer/internal/util"
)

func GetOperationReceiptRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Operations.GET("/:hash/receipt", getOperationReceiptHandler(s))
}

func getOperationReceiptHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		log := util.LogFromContext(ctx)

		hashParam := c.Param("hash")
		if len(hashParam) != common.HashLength*2+2 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid operation hash")
		}

		receipt, err := s.Bundler.GetOperationReceipt(ctx, common.HexToHash(hashParam))
		if err != nil {
			log.Debug().Err(err).Msg("Failed to get operation receipt")
			return err
		}

		if receipt == nil {
			return c.NoContent(http.StatusNotFound)
		}

		return c.JSON(http.StatusOK, receipt)
	}
}
