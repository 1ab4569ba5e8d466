package dashboardapp

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
	DashboardBus *dashboardbus.Core
	WorkspaceBus *workspacebus.Core
	EmbedBus     *embedbus.Core
}

// Routes adds specific routes for this group.
func Routes(app *web.App, cfg Config) {
	const version = "v1"

	authen := mid.Authenticate(cfg.Auth)

	api := newApp(cfg.DashboardBus, cfg.WorkspaceBus, cfg.EmbedBus)

	app.HandlerFunc(http.MethodPost, version, "/dashboards", api.create, authen)
	app.HandlerFunc(http.MethodGet, version, "/dashboards/{dashboard_id}", api.queryByID, authen)
	app.HandlerFunc(http.MethodGet, version, "/dashboards/{dashboard_id}/embed", api.embed, authen)
}
