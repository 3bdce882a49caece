package errors

import (
	"net/http"

	"github.com/stacklok/mcp-gateway/pkg/logger"
)

// HandlerWithError is an http.HandlerFunc that may return an error instead
// of writing one itself, so the REST layer can centralize status-code
// mapping and logging.
type HandlerWithError func(http.ResponseWriter, *http.Request) error

// ErrorHandler wraps fn, mapping any returned error through Code: 5xx
// errors are logged in full and returned to the client as a generic
// message; 4xx errors are returned verbatim, since they are already
// safe to surface.
func ErrorHandler(fn HandlerWithError) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := fn(w, r)
		if err == nil {
			return
		}

		code := Code(err)
		if code >= http.StatusInternalServerError {
			logger.Errorf("internal server error: %v", err)
			http.Error(w, http.StatusText(code), code)
			return
		}
		http.Error(w, err.Error(), code)
	}
}
