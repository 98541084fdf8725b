package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/fueltrackr/internal/apiclient"
	"github.com/fueltrackr/internal/config"
	"github.com/fueltrackr/internal/handler"
	"github.com/fueltrackr/internal/logger"
	"github.com/fueltrackr/internal/middleware"
	"github.com/fueltrackr/internal/oidc"
	"github.com/fueltrackr/internal/service"
	"github.com/fueltrackr/internal/session"
	"github.com/fueltrackr/internal/startup"
	"github.com/fueltrackr/internal/storage"
	"github.com/fueltrackr/internal/storage/memory"
	"github.com/fueltrackr/internal/telemetry"
	"github.com/fueltrackr/internal/view"
)

func main() {
	logger.SetPrefix("web")
	dev := flag.Bool("dev", false, "keep sessions in memory (no Redis required)")
	flag.Parse()

	logger.Info("starting web service")
	cfg := config.Load()
	logger.SetLevel(cfg.LogLevel)

	shutdownTracing := telemetry.Setup(context.Background(), cfg.Tracing, "fueltrackr-web")

	var store storage.SessionStore
	if *dev {
		logger.Info("dev mode: in-memory session store")
		store = memory.New(cfg.Session.TTL, cfg.CodeTTL)
	} else {
		store = startup.ConnectRedisWithRetry(cfg.Redis.URL, cfg.Session.TTL, cfg.CodeTTL, 2*time.Minute)
	}
	defer store.Close()

	views, err := view.New()
	if err != nil {
		logger.Errorf("views: %v", err)
		os.Exit(1)
	}

	api := apiclient.New(cfg.APIBaseURL, cfg.APITimeout, nil)
	sessions := session.NewManager(store, cfg.Session)
	provider := oidc.NewProvider(cfg.OIDC)
	pages := handler.NewPages(views, cfg.Session.Secret, cfg.Session.Secure)

	routes := handler.Routes{
		Auth:               handler.NewAuthHandler(service.NewCallbackService(api, store), sessions, provider, pages),
		Account:            handler.NewAccountHandler(service.NewRegistrationService(api, cfg.RegistrationDomain), api, pages),
		Travel:             handler.NewTravelHandler(api, pages),
		Profile:            handler.NewProfileHandler(api, pages),
		Admin:              handler.NewAdminHandler(api, pages),
		Guard:              middleware.NewGuard(sessions),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		AuthRateLimit:      cfg.AuthRateLimit,
		TrustProxy:         cfg.TrustProxy,
	}

	srv := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      otelhttp.NewHandler(routes.Handler(), "fueltrackr-web"),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	var srvWg sync.WaitGroup
	errCh := make(chan error, 1)
	srvWg.Add(1)
	go func() {
		defer srvWg.Done()
		logger.Infof("server listening on %s (api %s)", cfg.ServerAddr, cfg.APIBaseURL)
		errCh <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logger.Errorf("server error: %v", err)
			os.Exit(1)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("server shutdown: %v", err)
	}
	logger.Info("server stopped accepting connections")
	srvWg.Wait()
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Errorf("otel shutdown: %v", err)
	}
	logger.Info("server goroutine exited")
}
