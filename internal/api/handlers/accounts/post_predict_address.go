package accounts

import (
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github/chapool/go-relayer/internal/account"
	"github/chapool/go-relayer/internal/api"
	"github/chapool/go-relayer/internal/contracts"
	"github/chapool/go-relayer/internal/util"
)

// PredictAddressRequest is the payload for a deterministic address query.
type PredictAddressRequest struct {
	ChainID         int64    `json:"chainId"`
	Owners          []string `json:"owners"`
	Threshold       int      `json:"threshold"`
	SaltNonce       string   `json:"saltNonce"`
	AccountVersion  string   `json:"accountVersion"`
	FallbackHandler string   `json:"fallbackHandler"`
}

// PredictAddressResponse carries the predicted address and the inputs that
// pin it.
type PredictAddressResponse struct {
	Address        string `json:"address"`
	Factory        string `json:"factory"`
	Singleton      string `json:"singleton"`
	AccountVersion string `json:"accountVersion"`
}

func PostPredictAddressRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Accounts.POST("/predict", postPredictAddressHandler(s))
}

func postPredictAddressHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		log := util.LogFromContext(ctx)

		var body PredictAddressRequest
		if err := c.Bind(&body); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
		}

		version := body.AccountVersion
		if version == "" {
			version = s.Config.Chain.AccountVersion
		}

		owners := make([]common.Address, 0, len(body.Owners))
		for _, owner := range body.Owners {
			if !common.IsHexAddress(owner) {
				return echo.NewHTTPError(http.StatusBadRequest, "invalid owner address "+owner)
			}
			owners = append(owners, common.HexToAddress(owner))
		}

		saltNonce := new(big.Int)
		if body.SaltNonce != "" {
			if _, ok := saltNonce.SetString(body.SaltNonce, 0); !ok {
				return echo.NewHTTPError(http.StatusBadRequest, "invalid salt nonce")
			}
		}

		factory, err := s.Registry.Resolve(body.ChainID, contracts.KindProxyFactory, version)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		}

		singleton, err := s.Registry.Resolve(body.ChainID, contracts.KindSingleton, version)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		}

		fallbackHandler := common.HexToAddress(body.FallbackHandler)
		if body.FallbackHandler == "" {
			fallbackHandler, err = s.Registry.Resolve(body.ChainID, contracts.KindFallbackHandler, version)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
			}
		}

		cfg := &account.Config{
			Owners:          owners,
			Threshold:       body.Threshold,
			FallbackHandler: fallbackHandler,
		}

		predicted, err := account.PredictAddress(account.PredictRequest{
			ChainID:        body.ChainID,
			Factory:        factory,
			Singleton:      singleton,
			Config:         cfg,
			SaltNonce:      saltNonce,
			AccountVersion: version,
		})
		if err != nil {
			if errors.Is(err, account.ErrZKStackChain) {
				return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
			}

			log.Debug().Err(err).Msg("Failed to predict account address")
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}

		return c.JSON(http.StatusOK, &PredictAddressResponse{
			Address:        predicted.Hex(),
			Factory:        factory.Hex(),
			Singleton:      singleton.Hex(),
			AccountVersion: version,
		})
	}
}
