package middleware

import (
	"fmt"
	"net/http"

	"github.com/angelmondragon/chieftain/api/responses"
	pkgerrors "github.com/angelmondragon/chieftain/pkg/errors"
	"github.com/angelmondragon/chieftain/pkg/logger"
)

// Recoverer turns panics into logged 500 responses. Strict invariant
// violations panic with a typed error, which keeps its code.
func Recoverer(logg *logger.Logger) func(http.Handler) http.Handler {
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

				var err *pkgerrors.Error
				switch v := rec.(type) {
				case *pkgerrors.Error:
					err = v
				case error:
					err = pkgerrors.Wrap(pkgerrors.CodeInternal, v, "panic")
				default:
					err = pkgerrors.Wrap(pkgerrors.CodeInternal, fmt.Errorf("panic: %v", rec), "panic")
				}

				ctx := r.Context()
				if logg != nil {
					ctx = logg.WithFields(ctx, map[string]any{"panic": fmt.Sprint(rec)})
					logg.Error(ctx, "panic.recovered", err)
				}
				responses.WriteError(ctx, nil, w, err)
			}()
			next.ServeHTTP(w, r)
		})
	}
}
