package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/dd0wney/cluso-conduit/pkg/logging"
)

// PanicRecovery recovers from panics in HTTP handlers.
// Internal details are logged but not exposed to clients.
func PanicRecovery(logger logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic in HTTP handler",
						logging.String("method", r.Method),
						logging.String("path", r.URL.Path),
						logging.String("request_id", GetRequestID(r)),
						logging.String("panic", fmt.Sprint(err)),
						logging.String("stack", string(debug.Stack())))

					http.Error(w, "Internal server error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
