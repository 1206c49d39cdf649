package predict

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/chapool/go-relayer/internal/account"
	"github/chapool/go-relayer/internal/config"
	"github/chapool/go-relayer/internal/contracts"
)

const (
	ownersFlag    = "owners"
	thresholdFlag = "threshold"
	saltNonceFlag = "salt-nonce"
	chainIDFlag   = "chain-id"
	versionFlag   = "account-version"
)

// New creates the predict command: it computes the deterministic deployment
// address of an account from its bootstrap configuration, without touching
// the network.
func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predicts the deterministic deployment address of an account",
		Run:   run,
	}

	cmd.Flags().String(ownersFlag, "", "comma-separated owner addresses")
	cmd.Flags().Int(thresholdFlag, 1, "signing threshold")
	cmd.Flags().String(saltNonceFlag, "0", "salt nonce (decimal or 0x-hex)")
	cmd.Flags().Int64(chainIDFlag, 0, "chain id (defaults to the configured chain)")
	cmd.Flags().String(versionFlag, "", "account version (defaults to the configured version)")

	return cmd
}

func run(cmd *cobra.Command, _ []string) {
	cfg := config.DefaultServiceConfigFromEnv()

	chainID, _ := cmd.Flags().GetInt64(chainIDFlag)
	if chainID == 0 {
		chainID = cfg.Chain.ChainID
	}

	version, _ := cmd.Flags().GetString(versionFlag)
	if version == "" {
		version = cfg.Chain.AccountVersion
	}

	ownersRaw, _ := cmd.Flags().GetString(ownersFlag)
	threshold, _ := cmd.Flags().GetInt(thresholdFlag)
	saltRaw, _ := cmd.Flags().GetString(saltNonceFlag)

	var owners []common.Address
	for _, part := range strings.Split(ownersRaw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if !common.IsHexAddress(part) {
			log.Fatal().Str("owner", part).Msg("Invalid owner address")
		}
		owners = append(owners, common.HexToAddress(part))
	}

	saltNonce := new(big.Int)
	if _, ok := saltNonce.SetString(saltRaw, 0); !ok {
		log.Fatal().Str("salt", saltRaw).Msg("Invalid salt nonce")
	}

	registry := contracts.DefaultRegistry()

	factory, err := registry.Resolve(chainID, contracts.KindProxyFactory, version)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to resolve proxy factory")
	}

	singleton, err := registry.Resolve(chainID, contracts.KindSingleton, version)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to resolve singleton")
	}

	fallbackHandler, err := registry.Resolve(chainID, contracts.KindFallbackHandler, version)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to resolve fallback handler")
	}

	predicted, err := account.PredictAddress(account.PredictRequest{
		ChainID:   chainID,
		Factory:   factory,
		Singleton: singleton,
		Config: &account.Config{
			Owners:          owners,
			Threshold:       threshold,
			FallbackHandler: fallbackHandler,
		},
		SaltNonce:      saltNonce,
		AccountVersion: version,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to predict account address")
	}

	fmt.Println(predicted.Hex())
}
