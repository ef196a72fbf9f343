package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	httpctx "github.com/dtroode/account-client/internal/api/http/context"
	"github.com/dtroode/account-client/internal/api/http/router"
	"github.com/dtroode/account-client/internal/config"
	"github.com/dtroode/account-client/internal/logger"
	"github.com/dtroode/account-client/internal/metrics"
	"github.com/dtroode/account-client/internal/model"
	"github.com/dtroode/account-client/internal/server"
	"github.com/dtroode/account-client/internal/stub"
	"github.com/dtroode/account-client/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

type listener interface {
	model.SecurityLayer
	Scheme() string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	// a missing .env is fine; the environment alone is enough
	_ = godotenv.Load()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	tokenManager := token.NewJWT(cfg.Stub.JWTSecret, cfg.Stub.Issuer)
	accountService := stub.NewService(cfg.Stub, tokenManager, logger)
	serverMetrics := metrics.NewServer(prometheus.DefaultRegisterer)

	r := router.New(accountService, httpctx.NewManager(), serverMetrics, prometheus.DefaultGatherer, cfg.API.DefaultPath, cfg.Stub, logger)
	httpServer := server.NewHTTPServer(r.Register(), fmt.Sprintf(":%s", cfg.Stub.Port))

	var sl listener
	if cfg.Stub.EnableHTTPS {
		sl = server.NewTLSListener(cfg.Stub.CertFileName, cfg.Stub.PrivateKeyFileName)
	} else {
		sl = server.NewPlainListener()
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func(s model.Server) {
		defer wg.Done()
		logger.Info("Starting account stub", "address", s.Address(), "scheme", sl.Scheme(), "base_path", cfg.API.DefaultPath)
		if err := s.Start(sl); err != nil {
			logger.Error("failed to start server", "error", err)
			stop()
		}
	}(httpServer)

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", "error", err, "address", httpServer.Address())
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
