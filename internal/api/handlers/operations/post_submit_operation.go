package operations

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/labstack/echo/v4"
	"github/chapool/go-relayer/internal/api"
	"github/chapool/go-relayer/internal/signing"
	"github/chapool/go-relayer/internal/util"
)

// SubmitOperationRequest is a signed operation ready for relaying.
type SubmitOperationRequest struct {
	Operation  *OperationPayload `json:"operation"`
	EntryPoint string            `json:"entryPoint"`

	// Threshold guards against submitting before enough signatures are
	// collected. Zero skips the check.
	Threshold int `json:"threshold"`
}

// SubmitOperationResponse carries the bundler-assigned operation hash.
type SubmitOperationResponse struct {
	Hash  string `json:"hash"`
	State string `json:"state"`
}

func PostSubmitOperationRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Operations.POST("", postSubmitOperationHandler(s))
}

func postSubmitOperationHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		log := util.LogFromContext(ctx)

		var body SubmitOperationRequest
		if err := c.Bind(&body); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
		}

		if body.Operation == nil {
			return echo.NewHTTPError(http.StatusBadRequest, "operation is required")
		}
		if !common.IsHexAddress(body.Operation.Sender) {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid sender address")
		}
		if len(body.Operation.Signatures) == 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "operation carries no signatures")
		}

		entryPoint, err := resolveEntryPoint(c, s, body.EntryPoint)
		if err != nil {
			return err
		}

		op := fromPayload(body.Operation)

		if state := s.Protocol.State(op, body.Threshold); body.Threshold > 0 && state != signing.ReadyToSubmit {
			return echo.NewHTTPError(http.StatusUnprocessableEntity,
				"operation is not ready to submit: "+state.String())
		}

		hash, err := s.Bundler.Submit(ctx, op, entryPoint)
		if err != nil {
			log.Debug().Err(err).Msg("Failed to submit operation")
			return echo.NewHTTPError(http.StatusBadGateway, err.Error())
		}

		return c.JSON(http.StatusOK, &SubmitOperationResponse{
			Hash:  hash.Hex(),
			State: signing.ReadyToSubmit.String(),
		})
	}
}
