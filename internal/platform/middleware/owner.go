package middleware

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	applog "github.com/janisto/todo-backend/internal/platform/logging"
	"github.com/janisto/todo-backend/internal/platform/respond"
)

const (
	// OwnerHeader carries the user ID set by the upstream gateway.
	OwnerHeader = "X-User-Id"
	// AnonymousOwner owns data for requests without OwnerHeader.
	AnonymousOwner = "anonymous"
)

type ownerKey struct{}

// Owner resolves the data owner from OwnerHeader and stores it in the request
// context. The header is trusted as-is; it only partitions data and is not an
// authentication mechanism.
func Owner() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			owner := AnonymousOwner
			if values := r.Header.Values(OwnerHeader); len(values) > 0 {
				if len(values) > 1 || !isValidHeaderID(values[0]) {
					respond.WriteProblem(w, r, http.StatusBadRequest, "invalid "+OwnerHeader+" header")
					return
				}
				owner = values[0]
			}
			ctx := WithOwner(r.Context(), owner)
			ctx = applog.WithFields(ctx, zap.String("userId", owner))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithOwner returns a copy of ctx carrying owner.
func WithOwner(ctx context.Context, owner string) context.Context {
	return context.WithValue(ctx, ownerKey{}, owner)
}

// OwnerFromContext returns the owner stored by Owner, or AnonymousOwner.
func OwnerFromContext(ctx context.Context) string {
	if owner, ok := ctx.Value(ownerKey{}).(string); ok && owner != "" {
		return owner
	}
	return AnonymousOwner
}
