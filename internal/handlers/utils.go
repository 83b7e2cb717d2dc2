package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/akolanti/docqa/internal/adapter"
	"github.com/akolanti/docqa/internal/config"
	"github.com/akolanti/docqa/internal/domain/ragErrors"
	"github.com/akolanti/docqa/internal/rag"
	"github.com/akolanti/docqa/pkg/logger_i"
)

var logRH = logger_i.NewLogger("RequestHandler")

func writeJsonResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but can't send a clean status code now
		logRH.Error("Error encoding response", "error", err)
	}
}

func validateContext(ctx context.Context) bool {
	if ctx.Err() != nil {
		logRH.WithTrace(ctx).Warn("context error", "error", ctx.Err())
		return false
	}
	return true
}

func traceId(ctx context.Context) string {
	trace, _ := ctx.Value(config.TRACE_ID_KEY).(string)
	return trace
}

func WriteErrorResponse(w http.ResponseWriter, httpCode int, id string, error string) {
	writeJsonResponse(w, httpCode, adapter.BadRequest(id, error, httpCode))
}

// writeRagError maps pipeline error kinds onto HTTP status codes.
func writeRagError(w http.ResponseWriter, r *http.Request, id string, err error) {
	code := StatusFor(err)
	log := logRH.WithTrace(r.Context())
	if code >= http.StatusInternalServerError {
		log.Error("Request failed", "path", r.URL.Path, "status", code, "error", err)
	} else {
		log.Warn("Request rejected", "path", r.URL.Path, "status", code, "error", err)
	}
	writeJsonResponse(w, code, adapter.FromError(id, err, code))
}

func StatusFor(err error) int {
	if errors.Is(err, rag.ErrDuplicateDocument) {
		return http.StatusConflict
	}
	switch ragErrors.KindOf(err) {
	case ragErrors.KindValidation, ragErrors.KindLoad, ragErrors.KindConfig:
		return http.StatusBadRequest
	case ragErrors.KindGeneration:
		return http.StatusBadGateway
	case ragErrors.KindStoreUnavailable:
		return http.StatusServiceUnavailable
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}
