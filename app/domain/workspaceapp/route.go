package workspaceapp

import (
	"net/http"

	"github.com/hexalytics/portal/app/sdk/auth"
	"github.com/hexalytics/portal/app/sdk/mid"
	"github.com/hexalytics/portal/business/domain/dashboardbus"
	"github.com/hexalytics/portal/business/domain/embedbus"
	"github.com/hexalytics/portal/business/domain/workspacebus"
	"github.com/hexalytics/portal/business/sdk/web"
)

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Auth         *auth.Auth
	WorkspaceBus *workspacebus.Core
	DashboardBus *dashboardbus.Core
	EmbedBus     *embedbus.Core
}

// Routes adds specific routes for this group.
func Routes(app *web.App, cfg Config) {
	const version = "v1"

	authen := mid.Authenticate(cfg.Auth)

	api := newApp(cfg.WorkspaceBus, cfg.DashboardBus, cfg.EmbedBus)

	app.HandlerFunc(http.MethodPost, version, "/workspaces", api.create, authen)
	app.HandlerFunc(http.MethodGet, version, "/workspaces", api.query, authen)
	app.HandlerFunc(http.MethodGet, version, "/workspaces/{workspace_id}", api.queryByID, authen)
	app.HandlerFunc(http.MethodPut, version, "/workspaces/{workspace_id}", api.update, authen)
	app.HandlerFunc(http.MethodDelete, version, "/workspaces/{workspace_id}", api.delete, authen)
	app.HandlerFunc(http.MethodGet, version, "/workspaces/{workspace_id}/embed", api.embed, authen)
	app.HandlerFunc(http.MethodGet, version, "/workspaces/{workspace_id}/dashboards", api.dashboards, authen)
	app.HandlerFunc(http.MethodGet, version, "/workspaces/{workspace_id}/members", api.members, authen)
	app.HandlerFunc(http.MethodPost, version, "/workspaces/{workspace_id}/members", api.addMember, authen)
	app.HandlerFunc(http.MethodDelete, version, "/workspaces/{workspace_id}/members/{user_id}", api.removeMember, authen)
}
