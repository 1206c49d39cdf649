package operations

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github/chapool/go-relayer/internal/account"
	"github/chapool/go-relayer/internal/api"
	"github/chapool/go-relayer/internal/contracts"
	"github/chapool/go-relayer/internal/operation"
	"github/chapool/go-relayer/internal/operation/estimate"
	"github/chapool/go-relayer/internal/signing"
	"github/chapool/go-relayer/internal/util"
)

// BuildOperationRequest describes the transactions an account wants relayed.
type BuildOperationRequest struct {
	Sender     string            `json:"sender"`
	Batch      []BatchTxPayload  `json:"batch"`
	EntryPoint string            `json:"entryPoint"`
	InitCode   hexutil.Bytes     `json:"initCode"`
	Paymaster  *PaymasterPayload `json:"paymaster"`
	Tag        hexutil.Bytes     `json:"tag"`
	ValidAfter string            `json:"validAfter"`
	ValidUntil string            `json:"validUntil"`

	// Sign requests a server-side owner signature on the built operation.
	// Requires a configured signer key.
	Sign bool `json:"sign"`
}

// BatchTxPayload is one transaction of the batch.
type BatchTxPayload struct {
	To           string        `json:"to"`
	Value        *hexutil.Big  `json:"value"`
	Data         hexutil.Bytes `json:"data"`
	DelegateCall bool          `json:"delegateCall"`
}

// PaymasterPayload selects the paymaster covering the operation's fees.
type PaymasterPayload struct {
	Address    string        `json:"address"`
	Data       hexutil.Bytes `json:"data"`
	Sponsoring bool          `json:"sponsoring"`
	Token      string        `json:"token"`
}

// BuildOperationResponse is the estimated operation plus the hash owners
// must sign.
type BuildOperationResponse struct {
	Operation  *OperationPayload `json:"operation"`
	Hash       string            `json:"hash"`
	Module     string            `json:"module"`
	EntryPoint string            `json:"entryPoint"`
	State      string            `json:"state"`
}

func PostBuildOperationRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Operations.POST("/build", postBuildOperationHandler(s))
}

func postBuildOperationHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		log := util.LogFromContext(ctx)

		var body BuildOperationRequest
		if err := c.Bind(&body); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
		}

		if !common.IsHexAddress(body.Sender) {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid sender address")
		}
		if len(body.Batch) == 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "batch must not be empty")
		}

		batch := make([]operation.BatchTx, 0, len(body.Batch))
		for _, tx := range body.Batch {
			if !common.IsHexAddress(tx.To) {
				return echo.NewHTTPError(http.StatusBadRequest, "invalid batch target "+tx.To)
			}

			kind := operation.Call
			if tx.DelegateCall {
				kind = operation.DelegateCall
			}
			batch = append(batch, operation.BatchTx{
				Kind:  kind,
				To:    common.HexToAddress(tx.To),
				Value: hexToBig(tx.Value),
				Data:  tx.Data,
			})
		}

		chainID := s.Config.Chain.ChainID

		module, err := s.Registry.Resolve(chainID, contracts.KindModule, s.Config.Chain.ModuleVersion)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		}

		multiSend, err := s.Registry.Resolve(chainID, contracts.KindMultiSendCallOnly, s.Config.Chain.AccountVersion)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		}

		entryPoint, err := resolveEntryPoint(c, s, body.EntryPoint)
		if err != nil {
			return err
		}

		var paymaster *operation.PaymasterConfig
		if body.Paymaster != nil {
			if !common.IsHexAddress(body.Paymaster.Address) {
				return echo.NewHTTPError(http.StatusBadRequest, "invalid paymaster address")
			}
			paymaster = &operation.PaymasterConfig{
				Address:    common.HexToAddress(body.Paymaster.Address),
				Data:       body.Paymaster.Data,
				Sponsoring: body.Paymaster.Sponsoring,
				Token:      common.HexToAddress(body.Paymaster.Token),
			}
		}

		acc := account.NewOnchainAccount(s.Chain, common.HexToAddress(body.Sender), entryPoint, nil)

		op, err := s.Builder.BuildOperation(ctx, operation.BuildParams{
			Account:    acc,
			Batch:      batch,
			EntryPoint: entryPoint,
			Module:     module,
			MultiSend:  multiSend,
			InitCode:   body.InitCode,
			Paymaster:  paymaster,
			Tag:        body.Tag,
			ValidAfter: body.ValidAfter,
			ValidUntil: body.ValidUntil,
		})
		if err != nil {
			if errors.Is(err, account.ErrVersionTooOld) ||
				errors.Is(err, account.ErrModuleNotEnabled) ||
				errors.Is(err, account.ErrWrongFallbackHandler) {
				return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
			}

			log.Debug().Err(err).Msg("Failed to build operation")
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}

		threshold, err := acc.Threshold(ctx)
		if err != nil {
			log.Debug().Err(err).Msg("Failed to read account threshold")
			return err
		}

		estimator := estimate.EstimatorFor(paymaster, s.Config.Estimation.PaymasterVerificationMarginPercent)
		if err := s.Pipeline.Estimate(ctx, op, estimator, entryPoint, threshold); err != nil {
			log.Debug().Err(err).Msg("Failed to estimate operation gas")
			return err
		}

		if body.Sign {
			if s.Signer == nil {
				return echo.NewHTTPError(http.StatusUnprocessableEntity, "no server-side signer is configured")
			}

			err := s.Protocol.SignOperation(ctx, signing.SignParams{
				Operation:  op,
				Account:    acc,
				Signer:     s.Signer,
				Method:     signing.MethodHash,
				Module:     module,
				EntryPoint: entryPoint,
			})
			if err != nil {
				if errors.Is(err, signing.ErrSignerNotOwner) || errors.Is(err, signing.ErrSignerUnresolved) {
					return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
				}

				log.Debug().Err(err).Msg("Failed to sign operation")
				return err
			}
		}

		// The signing domain binds the chain the node actually serves, not
		// the configured one.
		nodeChainID, err := acc.ChainID(ctx)
		if err != nil {
			log.Debug().Err(err).Msg("Failed to read node chain id")
			return err
		}

		hash, err := signing.OperationHash(op, nodeChainID, module, entryPoint)
		if err != nil {
			return err
		}

		return c.JSON(http.StatusOK, &BuildOperationResponse{
			Operation:  toPayload(op),
			Hash:       hash.Hex(),
			Module:     module.Hex(),
			EntryPoint: entryPoint.Hex(),
			State:      s.Protocol.State(op, threshold).String(),
		})
	}
}

// resolveEntryPoint uses the requested entry point or falls back to the
// bundler's preferred one.
func resolveEntryPoint(c echo.Context, s *api.Server, requested string) (common.Address, error) {
	if requested != "" {
		if !common.IsHexAddress(requested) {
			return common.Address{}, echo.NewHTTPError(http.StatusBadRequest, "invalid entry point address")
		}
		return common.HexToAddress(requested), nil
	}

	entryPoints, err := s.Bundler.SupportedEntryPoints(c.Request().Context())
	if err != nil {
		return common.Address{}, err
	}
	if len(entryPoints) == 0 {
		return common.Address{}, echo.NewHTTPError(http.StatusUnprocessableEntity, "bundler supports no entry points")
	}

	return entryPoints[0], nil
}
