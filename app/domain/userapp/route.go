package userapp

import (
	"net/http"

	"github.com/hexalytics/portal/app/sdk/auth"
	"github.com/hexalytics/portal/app/sdk/mid"
	"github.com/hexalytics/portal/business/domain/userbus"
	"github.com/hexalytics/portal/business/sdk/web"
	"github.com/hexalytics/portal/business/types/role"
)

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Auth    *auth.Auth
	UserBus *userbus.Core
}

// Routes adds specific routes for this group.
func Routes(app *web.App, cfg Config) {
	const version = "v1"

	authen := mid.Authenticate(cfg.Auth)
	admin := mid.Authorize(cfg.Auth, role.Admin)

	api := newApp(cfg.Auth, cfg.UserBus)

	app.HandlerFunc(http.MethodGet, version, "/users", api.query, authen, admin)
	app.HandlerFunc(http.MethodGet, version, "/users/{user_id}", api.queryByID, authen, admin, mid.LoadUserByID(cfg.UserBus))
	app.HandlerFunc(http.MethodPost, version, "/users", api.create, authen, admin)
	app.HandlerFunc(http.MethodPut, version, "/me", api.update, authen, mid.LoadUser(cfg.UserBus))
	app.HandlerFunc(http.MethodDelete, version, "/me", api.disable, authen, mid.LoadUser(cfg.UserBus))
}
