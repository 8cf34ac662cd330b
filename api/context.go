package api

import (
	"context"

	"github.com/higbec/project-portal-backend/auth"
)

type keyType string

const adminKey keyType = "admin"

// ctxWithAdmin adds the authenticated admin's claims to the context
func ctxWithAdmin(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, adminKey, claims)
}

// adminFromCtx retrieves the authenticated admin's claims, or nil when the
// request did not pass the session middleware.
func adminFromCtx(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(adminKey).(*auth.Claims)
	return claims
}
