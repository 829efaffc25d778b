package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog"
)

// Recover turns a panic into a generic JSON 500 and logs the stack.
func Recover(l zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					l.Error().
						Str("request_id", RequestIDFromContext(r.Context())).
						Interface("panic", rec).
						Bytes("stack", debug.Stack()).
						Msg("handler panic")
					writeError(w, http.StatusInternalServerError, "internal", "something went wrong")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
