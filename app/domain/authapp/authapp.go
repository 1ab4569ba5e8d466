// Package authapp maintains the app layer api for the auth domain.
package authapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/mail"

	"github.com/hexalytics/portal/app/sdk/auth"
	"github.com/hexalytics/portal/app/sdk/errs"
	"github.com/hexalytics/portal/app/sdk/mid"
	"github.com/hexalytics/portal/business/domain/userbus"
	"github.com/hexalytics/portal/business/sdk/web"
	"github.com/hexalytics/portal/business/types/role"
)

type app struct {
	auth      *auth.Auth
	userBus   *userbus.Core
	activeKID string
}

// newApp constructs an auth app API for use.
func newApp(ath *auth.Auth, userBus *userbus.Core, activeKID string) *app {
	return &app{
		auth:      ath,
		userBus:   userBus,
		activeKID: activeKID,
	}
}

// signup registers a new user and returns a token alongside the profile so
// the client is logged in immediately.
func (a *app) signup(ctx context.Context, r *http.Request) web.Encoder {
	var req Signup
	if err := web.Decode(r, &req); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	nu, err := toBusNewUser(req)
	if err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	usr, err := a.userBus.Create(ctx, nu)
	if err != nil {
		if errors.Is(err, userbus.ErrUniqueEmail) {
			return errs.New(errs.Aborted, userbus.ErrUniqueEmail)
		}
		return errs.Errorf(errs.InternalOnlyLog, "signup: email[%s]: %s", req.Email, err)
	}

	tokenStr, err := a.auth.GenerateToken(a.activeKID, usr.ID, usr.Role)
	if err != nil {
		return errs.Errorf(errs.InternalOnlyLog, "generatetoken: %s", err)
	}

	return toAppSession(tokenStr, usr)
}

// login exchanges valid credentials for a signed token.
func (a *app) login(ctx context.Context, r *http.Request) web.Encoder {
	var req Login
	if err := web.Decode(r, &req); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	addr, err := mail.ParseAddress(req.Email)
	if err != nil {
		return errs.New(errs.InvalidArgument, fmt.Errorf("parsing email: %w", err))
	}

	usr, err := a.auth.Login(ctx, *addr, []byte(req.Password))
	if err != nil {
		return errs.New(errs.Unauthenticated, userbus.ErrAuthenticationFailure)
	}

	tokenStr, err := a.auth.GenerateToken(a.activeKID, usr.ID, usr.Role)
	if err != nil {
		return errs.Errorf(errs.InternalOnlyLog, "generatetoken: %s", err)
	}

	return toAppToken(tokenStr)
}

// me returns the authenticated user's profile.
func (a *app) me(ctx context.Context, _ *http.Request) web.Encoder {
	usr, err := mid.GetUser(ctx)
	if err != nil {
		return errs.Errorf(errs.Internal, "user missing in context: %s", err)
	}

	return toAppUser(usr)
}

// defaultSignupRole is what every self-registered user starts as.
var defaultSignupRole = role.User
