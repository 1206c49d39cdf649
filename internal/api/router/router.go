package router

import (
	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github/chapool/go-relayer/internal/api"
	"github/chapool/go-relayer/internal/api/handlers/accounts"
	"github/chapool/go-relayer/internal/api/handlers/common"
	"github/chapool/go-relayer/internal/api/handlers/operations"
)

// Init attaches the echo instance, middlewares and all routes to the server.
func Init(s *api.Server) {
	s.Echo = echo.New()
	s.Echo.Debug = false
	s.Echo.HideBanner = true

	if s.Config.Echo.EnableRecoverMiddleware {
		s.Echo.Use(middleware.Recover())
	}

	if s.Config.Echo.EnableRequestIDMiddleware {
		s.Echo.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
			Generator: uuid.NewString,
		}))
	}

	if s.Config.Echo.EnableLoggerMiddleware {
		s.Echo.Use(middleware.Logger())
	}

	if s.Config.Echo.EnableMetricsMiddleware {
		s.Echo.Use(echoprometheus.NewMiddleware("relayer"))
		s.Echo.GET("/metrics", echoprometheus.NewHandler())
	}

	s.Router = &api.Router{
		Routes:          nil,
		Root:            s.Echo.Group(""),
		Management:      s.Echo.Group("/-"),
		APIV1Accounts:   s.Echo.Group("/api/v1/accounts"),
		APIV1Operations: s.Echo.Group("/api/v1/operations"),
	}

	s.Router.Routes = []*echo.Route{
		common.GetHealthyRoute(s),
		common.GetReadyRoute(s),
		common.GetVersionRoute(s),
		accounts.PostPredictAddressRoute(s),
		operations.PostBuildOperationRoute(s),
		operations.PostSubmitOperationRoute(s),
		operations.GetEntryPointsRoute(s),
		operations.GetOperationRoute(s),
		operations.GetOperationReceiptRoute(s),
	}
}
