// @title           DocQA API
// @version         1.0
// @description     Upload documents and ask questions about them. Answers cite document and page.
// @termsOfService  http://swagger.io/terms/

// @contact.name    API Support
// @contact.url
// @contact.email   ank.github@gmail.com

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /
// @schemes   http https
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/akolanti/docqa/internal/app"
	"github.com/akolanti/docqa/internal/config"
	"github.com/akolanti/docqa/internal/handlers"
	"github.com/akolanti/docqa/internal/middleware"
	"github.com/akolanti/docqa/internal/server"
	"github.com/akolanti/docqa/pkg/logger_i"
	"golang.org/x/time/rate"
)

var (
	listenAddr string
	configPath string
)

func main() {
	//config
	flag.StringVar(&listenAddr, "listen-addr", "", "server listen address, overrides the config file")
	flag.StringVar(&configPath, "config", "docqa.yaml", "path to the YAML config file")
	flag.Parse()

	settings, err := config.Load(configPath)
	if err != nil {
		logger_i.Init("error", false)
		logger_i.NewLogger("main").Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	if listenAddr != "" {
		settings.Server.ListenAddr = listenAddr
	}

	logger_i.Init(settings.LogLevel, settings.LogJSON)
	var logger = logger_i.NewLogger("main")

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	logger.Info("Starting pipeline", "data dir", settings.DataDir)
	pipeline, err := app.Build(serviceContext, settings)
	if err != nil {
		logger.Error("Pipeline failed to initialize. Shutting down.", "error", err)
		os.Exit(1)
	}

	router := server.NewRouter(handlers.NewRequestHandler(pipeline.Service), middleware.Options{
		AuthToken:      settings.Server.AuthToken,
		RequestTimeout: settings.Server.RequestTimeout,
		Limiter:        middleware.NewIPRateLimiter(rate.Limit(config.RATE_LIMIT_PER_SECOND), config.BURST_RATE_LIMIT_PER_SECOND),
	})
	if settings.Server.AuthToken == "" {
		logger.Warn("DOCQA_AUTH_TOKEN is not set, the API is unauthenticated")
	}

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		CloseServices: func() {
			closeExternalServices()
			if err := pipeline.Close(); err != nil {
				logger.Error("Error closing the vector index", "error", err)
			}
		},
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(settings.Server.ListenAddr, router)

	<-stopExecution
	logger.Info("Server stopped")
}
