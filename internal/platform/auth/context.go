// Package auth carries the authenticated principal through a request and
// decides what that principal may do to an owned clinical record. It knows
// nothing about how identities are stored; the identity domain implements
// the lookup interfaces defined here.
package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Principal is the authenticated caller of a request. A superuser principal
// passes every ownership check; a regular principal only touches records it
// owns.
type Principal struct {
	ID        uuid.UUID
	LoginID   string
	Superuser bool
}

type principalKey struct{}

// WithPrincipal returns a context carrying the principal.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the principal stored by the session
// middleware, if any.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// PrincipalFromEcho is a convenience accessor for handlers.
func PrincipalFromEcho(c echo.Context) (Principal, bool) {
	return PrincipalFromContext(c.Request().Context())
}
