package api

import (
	"net/http"

	"github.com/propshare/exchange/pkg/util"
)

const userHeader = "X-User-ID"

// identityMiddleware seeds every request's context with a request id and
// the acting user taken from the X-User-ID header. Commands that require
// an identity reject requests where the header is absent.
func (s *Server) identityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := util.WithRequestID(r.Context(), r.Header.Get("X-Request-ID"))
		if actor := r.Header.Get(userHeader); actor != "" {
			ctx = util.WithActorID(ctx, actor)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
