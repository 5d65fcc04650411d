package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"docforge/internal/httputil"
)

// Recovery converts handler panics into problem-detail 500 responses
// so a bad request never takes down the whole desktop backend. The
// net/http abort sentinel is re-raised to keep its usual treatment.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				logger.Error("request panicked",
					"method", r.Method,
					"path", r.URL.Path,
					"panic", rec,
					"stack", string(debug.Stack()),
				)
				httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
			}()

			next.ServeHTTP(w, r)
		})
	}
}
