package server

import (
	"context"
	"errors"
	"net/http"
	"os"

	"github.com/akolanti/docqa/internal/adapter/utils"
	"github.com/akolanti/docqa/internal/config"
	"github.com/akolanti/docqa/internal/handlers"
	"github.com/akolanti/docqa/internal/middleware"
	"github.com/akolanti/docqa/pkg/logger_i"
	"github.com/go-chi/chi/v5"
)

var (
	server  *http.Server
	_logger = logger_i.NewLogger("Server")
)

type ShutdownParams struct {
	GracefulShutdown chan os.Signal
	StopExecution    chan bool
	CloseServices    func()
}

// NewRouter mounts the API on a router. /health only gets the trace and timeout middleware.
func NewRouter(h *handlers.RequestHandler, opts middleware.Options) *chi.Mux {
	r := utils.NewRouter()
	chain := middleware.NewChain(opts)
	public := middleware.NewChain(middleware.Options{RequestTimeout: opts.RequestTimeout})

	r.NotFound(handlers.NotFoundHandler)
	r.MethodNotAllowed(handlers.MethodNotAllowedHandler)

	r.Get("/health", public.Wrap(h.GetHealth))
	r.Post("/chat", chain.Wrap(h.ChatHandler))
	r.Get("/history", chain.Wrap(h.GetHistoryHandler))
	r.Delete("/history", chain.Wrap(h.DeleteHistoryHandler))
	r.Post("/ingest", chain.Wrap(h.PostIngestHandler))
	r.Get("/documents", chain.Wrap(h.GetDocumentsHandler))
	r.Post("/maintenance/repair", chain.Wrap(h.PostRepairHandler))
	r.Delete("/data", chain.Wrap(h.DeleteDataHandler))
	return r
}

func CreateServer(listenAddr string, handler http.Handler) {
	server = &http.Server{
		Addr:         listenAddr,
		Handler:      handler,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	_logger.Info("Server is listening at", "address", listenAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		_logger.Error("Server crashed", "error", err.Error(), "addr", listenAddr)
	}
}

func ShutDownHandler(shutdownParams ShutdownParams) {
	state := <-shutdownParams.GracefulShutdown
	_logger.Info("Server is shutting down", "signal", state.String())

	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownContextTimeout)
	defer cancel()

	done := make(chan struct{})

	go func() {
		if server != nil {
			server.SetKeepAlivesEnabled(false)
			if err := server.Shutdown(ctx); err != nil {
				_logger.Error("Could not shutdown gracefully", "error", err)
			}
		}

		//in-flight requests are done, the index can be closed
		shutdownParams.CloseServices()
		close(shutdownParams.StopExecution)
		close(done)
	}()

	select {
	case <-done:
		_logger.Info("Gracefully is shutting down")
	case <-ctx.Done():
		_logger.Info("Force Shut down")
		os.Exit(1)
	}
}
