package checkapp

import (
	"net/http"

	"github.com/hexalytics/portal/business/sdk/web"
	"github.com/hexalytics/portal/foundation/logger"
	"github.com/hexalytics/portal/foundation/metabase"
	"github.com/jmoiron/sqlx"
)

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Build    string
	Log      *logger.Logger
	DB       *sqlx.DB
	Metabase *metabase.Client
}

// Routes adds specific routes for this group.
func Routes(app *web.App, cfg Config) {
	const version = "v1"

	api := newApp(cfg.Build, cfg.Log, cfg.DB, cfg.Metabase)

	app.HandlerFuncNoMid(http.MethodGet, version, "/liveness", api.liveness)
	app.HandlerFuncNoMid(http.MethodGet, version, "/readiness", api.readiness)
}
