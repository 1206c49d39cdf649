package config

import (
	"github/chapool/go-relayer/internal/util"
)

// EchoServer configures the HTTP surface.
type EchoServer struct {
	ListenAddress                  string
	HideInternalServerErrorDetails bool
	EnableRecoverMiddleware        bool
	EnableRequestIDMiddleware      bool
	EnableLoggerMiddleware         bool
	EnableMetricsMiddleware        bool
}

// Chain configures the target network and account deployment versions.
type Chain struct {
	RPCURL         string
	ChainID        int64
	AccountVersion string
	ModuleVersion  string
}

// Bundler configures the relayer endpoint.
type Bundler struct {
	URL string
}

// Estimation configures the fee estimation pipeline.
type Estimation struct {
	PaymasterVerificationMarginPercent int64
}

// Logger configures zerolog.
type Logger struct {
	Level              string
	PrettyPrintConsole bool
}

// Signer configures the optional in-process signer.
type Signer struct {
	PrivateKeyHex string
}

// Server is the full service configuration.
type Server struct {
	Echo       EchoServer
	Chain      Chain
	Bundler    Bundler
	Estimation Estimation
	Logger     Logger
	Signer     Signer
}

// DefaultServiceConfigFromEnv returns the server config as parsed from the
// environment.
func DefaultServiceConfigFromEnv() Server {
	util.LoadDotEnv()

	return Server{
		Echo: EchoServer{
			ListenAddress:                  util.GetEnv("SERVER_ECHO_LISTEN_ADDRESS", ":8080"),
			HideInternalServerErrorDetails: util.GetEnvAsBool("SERVER_ECHO_HIDE_INTERNAL_SERVER_ERROR_DETAILS", true),
			EnableRecoverMiddleware:        util.GetEnvAsBool("SERVER_ECHO_ENABLE_RECOVER_MIDDLEWARE", true),
			EnableRequestIDMiddleware:      util.GetEnvAsBool("SERVER_ECHO_ENABLE_REQUEST_ID_MIDDLEWARE", true),
			EnableLoggerMiddleware:         util.GetEnvAsBool("SERVER_ECHO_ENABLE_LOGGER_MIDDLEWARE", true),
			EnableMetricsMiddleware:        util.GetEnvAsBool("SERVER_ECHO_ENABLE_METRICS_MIDDLEWARE", true),
		},
		Chain: Chain{
			RPCURL:         util.GetEnv("SERVER_CHAIN_RPC_URL", "http://localhost:8545"),
			ChainID:        util.GetEnvAsInt64("SERVER_CHAIN_ID", 11155111),
			AccountVersion: util.GetEnv("SERVER_CHAIN_ACCOUNT_VERSION", "1.4.1"),
			ModuleVersion:  util.GetEnv("SERVER_CHAIN_MODULE_VERSION", "0.3.0"),
		},
		Bundler: Bundler{
			URL: util.GetEnv("SERVER_BUNDLER_URL", "http://localhost:4337"),
		},
		Estimation: Estimation{
			PaymasterVerificationMarginPercent: util.GetEnvAsInt64("SERVER_ESTIMATION_PAYMASTER_VERIFICATION_MARGIN_PERCENT", 20),
		},
		Logger: Logger{
			Level:              util.GetEnv("SERVER_LOGGER_LEVEL", "info"),
			PrettyPrintConsole: util.GetEnvAsBool("SERVER_LOGGER_PRETTY_PRINT_CONSOLE", false),
		},
		Signer: Signer{
			PrivateKeyHex: util.GetEnv("SERVER_SIGNER_PRIVATE_KEY", ""),
		},
	}
}
