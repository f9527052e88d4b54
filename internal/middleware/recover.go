// AngelaMos | 2026
// recover.go

package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/codeclash-gg/backend/internal/core"
)

func Recoverer(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}

					logger.Error("panic recovered",
						"panic", rec,
						"method", r.Method,
						"path", r.URL.Path,
						"request_id", GetRequestID(r.Context()),
						"stack", string(debug.Stack()),
					)

					core.SetSpanError(
						r.Context(),
						fmt.Errorf("panic: %v", rec),
					)

					core.JSONError(w, core.NewAppError(
						nil,
						"an unexpected error occurred",
						http.StatusInternalServerError,
						"INTERNAL_ERROR",
					))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
