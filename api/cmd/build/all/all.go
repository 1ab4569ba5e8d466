// Package all binds all the routes into the specified app.
package all

import (
	"time"

	"github.com/hexalytics/portal/app/domain/authapp"
	"github.com/hexalytics/portal/app/domain/checkapp"
	"github.com/hexalytics/portal/app/domain/dashboardapp"
	"github.com/hexalytics/portal/app/domain/userapp"
	"github.com/hexalytics/portal/app/domain/workspaceapp"
	"github.com/hexalytics/portal/app/sdk/auth"
	"github.com/hexalytics/portal/app/sdk/mux"
	"github.com/hexalytics/portal/business/domain/dashboardbus"
	"github.com/hexalytics/portal/business/domain/dashboardbus/stores/dashboarddb"
	"github.com/hexalytics/portal/business/domain/embedbus"
	"github.com/hexalytics/portal/business/domain/userbus"
	"github.com/hexalytics/portal/business/domain/userbus/stores/usercache"
	"github.com/hexalytics/portal/business/domain/userbus/stores/userdb"
	"github.com/hexalytics/portal/business/domain/workspacebus"
	"github.com/hexalytics/portal/business/domain/workspacebus/stores/workspacedb"
	"github.com/hexalytics/portal/business/sdk/web"
)

// Routes constructs the add value which provides the implementation of
// of RouteAdder for specifying what routes to bind to this instance.
func Routes() add {
	return add{}
}

type add struct{}

func (add) Add(app *web.App, cfg mux.Config) {
	userBus := userbus.NewCore(usercache.NewStore(cfg.Log, userdb.NewStore(cfg.Log, cfg.DB), time.Minute*5))
	workspaceBus := workspacebus.NewCore(cfg.Log, workspacedb.NewStore(cfg.Log, cfg.DB), cfg.Metabase)
	dashboardBus := dashboardbus.NewCore(cfg.Log, dashboarddb.NewStore(cfg.Log, cfg.DB), cfg.Metabase)
	embedBus := embedbus.NewCore(workspaceBus, dashboardBus, cfg.Embedder)

	authClient := auth.New(auth.Config{
		Log:       cfg.Log,
		UserBus:   userBus,
		KeyLookup: cfg.AuthConfig.KeyLookup,
		Issuer:    cfg.AuthConfig.Issuer,
	})

	checkapp.Routes(app, checkapp.Config{
		Build:    cfg.Build,
		Log:      cfg.Log,
		DB:       cfg.DB,
		Metabase: cfg.Metabase,
	})

	authapp.Routes(app, authapp.Config{
		Auth:      authClient,
		UserBus:   userBus,
		ActiveKID: cfg.AuthConfig.ActiveKID,
	})

	userapp.Routes(app, userapp.Config{
		Auth:    authClient,
		UserBus: userBus,
	})

	workspaceapp.Routes(app, workspaceapp.Config{
		Auth:         authClient,
		WorkspaceBus: workspaceBus,
		DashboardBus: dashboardBus,
		EmbedBus:     embedBus,
	})

	dashboardapp.Routes(app, dashboardapp.Config{
		Auth:         authClient,
		DashboardBus: dashboardBus,
		WorkspaceBus: workspaceBus,
		EmbedBus:     embedBus,
	})
}
