package httpapi

import (
	"net/http"

	"github.com/g4biGTJS/vsport-elo/internal/platform/logging"
)

func NewRouter(handler *Handler, proxy *ReverseProxy, logger *logging.Logger, corsAllowedOrigins []string) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handler.Healthz)
	mux.HandleFunc("GET /matches", handler.GetMatches)
	mux.HandleFunc("GET /standings", handler.GetStandings)
	if proxy != nil {
		mux.Handle("GET /proxy", proxy)
	}

	return RequestTracing(RequestLogging(logger, CORS(corsAllowedOrigins, recoverPanic(logger, mux))))
}

func recoverPanic(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := startSpan(r.Context(), "httpapi.recoverPanic")
		defer span.End()

		defer func() {
			if rec := recover(); rec != nil {
				logger.ErrorContext(ctx, "panic recovered", "panic", rec, "path", r.URL.Path)
				w.Header().Set("Content-Type", "application/json; charset=utf-8")
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte(`{"source":"error","error":"internal error"}`))
			}
		}()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
