// Package middleware provides HTTP authorization middleware for Bastion.
package middleware

import (
	"encoding/json"

	"github.com/xraph/forge"

	"github.com/xraph/bastion"
)

// Require allows the request only if the authenticated user holds the
// named permission. The user is resolved from the request context
// (Authsome user ID); anonymous requests are denied.
func Require(eng *bastion.Engine, permName string) forge.Middleware {
	return func(next forge.Handler) forge.Handler {
		return func(ctx forge.Context) error {
			userID := forge.UserIDFromContext(ctx.Context())
			if userID == "" {
				return denyResponse(ctx)
			}

			ok, err := eng.HasPermission(ctx.Context(), userID, permName)
			if err != nil || !ok {
				return denyResponse(ctx)
			}
			return next(ctx)
		}
	}
}

// RequireAny allows the request if the user holds ANY of the permissions.
func RequireAny(eng *bastion.Engine, permNames ...string) forge.Middleware {
	return func(next forge.Handler) forge.Handler {
		return func(ctx forge.Context) error {
			userID := forge.UserIDFromContext(ctx.Context())
			if userID == "" {
				return denyResponse(ctx)
			}

			for _, name := range permNames {
				ok, err := eng.HasPermission(ctx.Context(), userID, name)
				if err == nil && ok {
					return next(ctx)
				}
			}
			return denyResponse(ctx)
		}
	}
}

// RequireAll allows the request only if the user holds ALL the permissions.
func RequireAll(eng *bastion.Engine, permNames ...string) forge.Middleware {
	return func(next forge.Handler) forge.Handler {
		return func(ctx forge.Context) error {
			userID := forge.UserIDFromContext(ctx.Context())
			if userID == "" {
				return denyResponse(ctx)
			}

			for _, name := range permNames {
				ok, err := eng.HasPermission(ctx.Context(), userID, name)
				if err != nil || !ok {
					return denyResponse(ctx)
				}
			}
			return next(ctx)
		}
	}
}

// RequireRole allows the request only if the user holds the named role.
func RequireRole(eng *bastion.Engine, roleName string) forge.Middleware {
	return func(next forge.Handler) forge.Handler {
		return func(ctx forge.Context) error {
			userID := forge.UserIDFromContext(ctx.Context())
			if userID == "" {
				return denyResponse(ctx)
			}

			roles, err := eng.RolesForUser(ctx.Context(), userID)
			if err != nil {
				return denyResponse(ctx)
			}
			for _, name := range roles {
				if name == roleName {
					return next(ctx)
				}
			}
			return denyResponse(ctx)
		}
	}
}

func denyResponse(ctx forge.Context) error {
	ctx.SetHeader("Content-Type", "application/json")
	ctx.Response().WriteHeader(403)
	return json.NewEncoder(ctx.Response()).Encode(map[string]string{"error": "access denied"})
}
