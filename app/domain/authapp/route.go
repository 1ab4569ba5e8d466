package authapp

import (
	"net/http"

	"github.com/hexalytics/portal/app/sdk/auth"
	"github.com/hexalytics/portal/app/sdk/mid"
	"github.com/hexalytics/portal/business/domain/userbus"
	"github.com/hexalytics/portal/business/sdk/web"
)

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Auth      *auth.Auth
	UserBus   *userbus.Core
	ActiveKID string
}

// Routes adds specific routes for this group.
func Routes(app *web.App, cfg Config) {
	const version = "v1"

	authen := mid.Authenticate(cfg.Auth)

	api := newApp(cfg.Auth, cfg.UserBus, cfg.ActiveKID)

	app.HandlerFunc(http.MethodPost, version, "/auth/signup", api.signup)
	app.HandlerFunc(http.MethodPost, version, "/auth/login", api.login)
	app.HandlerFunc(http.MethodGet, version, "/auth/me", api.me, authen, mid.LoadUser(cfg.UserBus))
}
