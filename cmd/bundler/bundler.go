package bundler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	bundlerclient "github/chapool/go-relayer/internal/bundler"
	"github/chapool/go-relayer/internal/config"
	"github/chapool/go-relayer/internal/util/command"
)

const dialTimeout = 10 * time.Second

func New() *cobra.Command {
	return command.NewSubcommandGroup("bundler",
		newChainID(),
		newEntryPoints(),
	)
}

func newChainID() *cobra.Command {
	return &cobra.Command{
		Use:   "chain-id",
		Short: "Queries the configured bundler's chain id",
		Run: func(_ *cobra.Command, _ []string) {
			withClient(func(ctx context.Context, client *bundlerclient.Client) error {
				chainID, err := client.ChainID(ctx)
				if err != nil {
					return err
				}

				fmt.Println(chainID.String())
				return nil
			})
		},
	}
}

func newEntryPoints() *cobra.Command {
	return &cobra.Command{
		Use:   "entry-points",
		Short: "Lists the bundler's supported entry points, preferred first",
		Run: func(_ *cobra.Command, _ []string) {
			withClient(func(ctx context.Context, client *bundlerclient.Client) error {
				entryPoints, err := client.SupportedEntryPoints(ctx)
				if err != nil {
					return err
				}

				for _, entryPoint := range entryPoints {
					fmt.Println(entryPoint.Hex())
				}
				return nil
			})
		},
	}
}

func withClient(fn func(ctx context.Context, client *bundlerclient.Client) error) {
	cfg := config.DefaultServiceConfigFromEnv()

	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()

	client, err := bundlerclient.Dial(ctx, cfg.Bundler.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to bundler")
	}
	defer client.Close()

	if err := fn(ctx, client); err != nil {
		log.Fatal().Err(err).Msg("Bundler query failed")
	}
}
