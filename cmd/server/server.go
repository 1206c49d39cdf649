package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/chapool/go-relayer/internal/api"
	"github/chapool/go-relayer/internal/api/router"
	"github/chapool/go-relayer/internal/bundler"
	"github/chapool/go-relayer/internal/config"
	"github/chapool/go-relayer/internal/operation/estimate"
	"github/chapool/go-relayer/internal/signing"
)

const shutdownTimeout = 30 * time.Second

func New() *cobra.Command {
	return &cobra.Command{
		Use:   "server",
		Short: "Starts the relayer HTTP server",
		Run: func(_ *cobra.Command, _ []string) {
			runServer()
		},
	}
}

func runServer() {
	cfg := config.DefaultServiceConfigFromEnv()

	s := api.NewServer(cfg)

	chainClient, err := ethclient.DialContext(context.Background(), cfg.Chain.RPCURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to chain node")
	}
	defer chainClient.Close()

	bundlerClient, err := bundler.Dial(context.Background(), cfg.Bundler.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to bundler")
	}
	defer bundlerClient.Close()

	s.Chain = chainClient
	s.Bundler = bundlerClient
	s.Pipeline = estimate.NewPipeline(bundlerClient)

	if cfg.Signer.PrivateKeyHex != "" {
		signer, err := signing.NewLocalSigner(cfg.Signer.PrivateKeyHex)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize local signer")
		}
		s.Signer = signer
		log.Info().Str("signer", signer.Address().Hex()).Msg("Server-side signing enabled")
	}

	router.Init(s)

	go func() {
		if err := s.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to gracefully shut down server")
	}
}
