// Package server wires the application together and runs the HTTP server.
//
// Construction is explicit: config is validated, the database handle is
// opened once and injected into the repositories, which are injected into
// the services and controllers. Nothing reaches for process-wide state.
package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/ordertrack/app/controllers"
	"github.com/shashiranjanraj/ordertrack/app/repositories"
	"github.com/shashiranjanraj/ordertrack/app/routes"
	"github.com/shashiranjanraj/ordertrack/app/services"
	"github.com/shashiranjanraj/ordertrack/config"
	"github.com/shashiranjanraj/ordertrack/pkg/database"
	"github.com/shashiranjanraj/ordertrack/pkg/logger"
	"github.com/shashiranjanraj/ordertrack/pkg/metrics"
	"github.com/shashiranjanraj/ordertrack/pkg/middleware"
	"github.com/shashiranjanraj/ordertrack/pkg/reqid"
	"github.com/shashiranjanraj/ordertrack/pkg/router"
)

// BuildRouter assembles the full middleware stack and API against the
// given database handle. Exposed for HTTP-level tests.
func BuildRouter(db *gorm.DB) *router.Router {
	users := repositories.NewUserRepository(db)
	orders := repositories.NewOrderRepository(db)
	prefs := repositories.NewPreferenceRepository(db)

	c := routes.Controllers{
		Auth:          controllers.NewAuthController(services.NewAuthService(users)),
		Orders:        controllers.NewOrderController(services.NewOrderService(orders)),
		Notifications: controllers.NewNotificationController(services.NewPreferenceService(prefs)),
	}

	r := router.New()
	r.Use(metrics.Middleware())
	r.Use(reqid.Middleware())
	r.Use(middleware.Recovery)
	r.Use(middleware.Logger)
	r.Use(middleware.CORS(middleware.CORSOptionsFromConfig()))
	r.Use(middleware.RateLimit(config.RateLimitMax(), time.Duration(config.RateLimitWindowSecs())*time.Second))

	routes.RegisterAPI(r, c, middleware.Auth(users))
	return r
}

// Start validates configuration, connects the database and serves until
// SIGINT/SIGTERM, then shuts down gracefully.
func Start() error {
	if err := config.Load(); err != nil {
		return err
	}
	if err := config.Validate(); err != nil {
		return err
	}
	logger.Setup()

	db, err := database.Connect()
	if err != nil {
		return err
	}

	r := BuildRouter(db)

	srv := &http.Server{
		Addr:              ":" + config.AppPort(),
		Handler:           r.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr, "env", config.AppEnv())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
