package mid

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/hexalytics/portal/app/sdk/errs"
	"github.com/hexalytics/portal/business/domain/userbus"
	"github.com/hexalytics/portal/business/sdk/web"
)

// LoadUser loads the authenticated user into the context using the token
// subject. Runs after Authenticate.
func LoadUser(userBus *userbus.Core) web.MidFunc {
	m := func(next web.HandlerFunc) web.HandlerFunc {
		h := func(ctx context.Context, r *http.Request) web.Encoder {
			userID, err := GetUserID(ctx)
			if err != nil {
				return errs.New(errs.Unauthenticated, err)
			}

			usr, err := userBus.QueryByID(ctx, userID)
			if err != nil {
				if errors.Is(err, userbus.ErrNotFound) {
					return errs.New(errs.Unauthenticated, err)
				}
				return errs.Errorf(errs.Internal, "querybyid: userID[%s]: %s", userID, err)
			}

			ctx = setUser(ctx, usr)

			return next(ctx, r)
		}

		return h
	}

	return m
}

// LoadUserByID loads the user named by the user_id path parameter into the
// context. Runs after Authenticate on admin routes.
func LoadUserByID(userBus *userbus.Core) web.MidFunc {
	m := func(next web.HandlerFunc) web.HandlerFunc {
		h := func(ctx context.Context, r *http.Request) web.Encoder {
			id := web.Param(r, "user_id")

			userID, err := uuid.Parse(id)
			if err != nil {
				return errs.NewFieldErrors("user_id", err)
			}

			usr, err := userBus.QueryByID(ctx, userID)
			if err != nil {
				if errors.Is(err, userbus.ErrNotFound) {
					return errs.New(errs.NotFound, err)
				}
				return errs.Errorf(errs.Internal, "querybyid: userID[%s]: %s", userID, err)
			}

			ctx = setUser(ctx, usr)

			return next(ctx, r)
		}

		return h
	}

	return m
}
