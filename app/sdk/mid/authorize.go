package mid

import (
	"context"
	"net/http"

	"github.com/hexalytics/portal/app/sdk/auth"
	"github.com/hexalytics/portal/app/sdk/errs"
	"github.com/hexalytics/portal/business/sdk/web"
	"github.com/hexalytics/portal/business/types/role"
)

// Authorize validates that the authenticated user holds one of the allowed
// roles. Routes with no roles configured are denied by default.
func Authorize(ath *auth.Auth, allowedRoles ...role.Role) web.MidFunc {
	m := func(next web.HandlerFunc) web.HandlerFunc {
		h := func(ctx context.Context, r *http.Request) web.Encoder {
			claims := GetClaims(ctx)

			if err := ath.Authorize(ctx, claims, allowedRoles...); err != nil {
				return errs.New(errs.PermissionDenied, err)
			}

			return next(ctx, r)
		}

		return h
	}

	return m
}
