package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github/chapool/go-relayer/internal/bundler"
	"github/chapool/go-relayer/internal/config"
	"github/chapool/go-relayer/internal/contracts"
	"github/chapool/go-relayer/internal/operation"
	"github/chapool/go-relayer/internal/operation/estimate"
	"github/chapool/go-relayer/internal/signing"
)

// Router keeps the echo route groups.
type Router struct {
	Routes          []*echo.Route
	Root            *echo.Group
	Management      *echo.Group
	APIV1Accounts   *echo.Group
	APIV1Operations *echo.Group
}

// Server is a central struct keeping all the dependencies.
type Server struct {
	// -> initialized with router.Init(s)
	Echo   *echo.Echo
	Router *Router

	Config   config.Server
	Registry *contracts.Registry
	Chain    *ethclient.Client
	Bundler  bundler.Service
	Builder  operation.Builder
	Pipeline *estimate.Pipeline
	Protocol *signing.Protocol

	// Signer is the optional in-process signer; nil when no key is
	// configured, in which case callers must sign operations themselves.
	Signer *signing.LocalSigner
}

// NewServer creates the server shell with its local components; the bundler
// client and router are attached by the caller before Start.
func NewServer(cfg config.Server) *Server {
	return &Server{
		Config:   cfg,
		Registry: contracts.DefaultRegistry(),
		Builder:  operation.NewBuilder(),
		Protocol: signing.NewProtocol(),
	}
}

// Ready reports whether all dependencies are attached.
func (s *Server) Ready() bool {
	return s.Echo != nil &&
		s.Router != nil &&
		s.Registry != nil &&
		s.Chain != nil &&
		s.Bundler != nil &&
		s.Builder != nil &&
		s.Pipeline != nil
}

// Start runs the HTTP listener.
func (s *Server) Start() error {
	if !s.Ready() {
		return errors.New("server is not ready")
	}

	if err := s.Echo.Start(s.Config.Echo.ListenAddress); err != nil {
		return fmt.Errorf("failed to start echo server: %w", err)
	}

	return nil
}

// Shutdown stops the HTTP listener.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Warn().Msg("Shutting down server")

	if s.Echo != nil {
		if err := s.Echo.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Failed to shutdown echo server")
			return err
		}
	}

	return nil
}
