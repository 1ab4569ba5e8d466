// Package checkapp maintains the app layer api for the check domain.
package checkapp

import (
	"context"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/hexalytics/portal/app/sdk/errs"
	"github.com/hexalytics/portal/business/sdk/sqldb"
	"github.com/hexalytics/portal/business/sdk/web"
	"github.com/hexalytics/portal/foundation/logger"
	"github.com/hexalytics/portal/foundation/metabase"
	"github.com/jmoiron/sqlx"
)

type app struct {
	build    string
	log      *logger.Logger
	db       *sqlx.DB
	metabase *metabase.Client
}

func newApp(build string, log *logger.Logger, db *sqlx.DB, mb *metabase.Client) *app {
	return &app{
		build:    build,
		log:      log,
		db:       db,
		metabase: mb,
	}
}

// readiness checks if the database and the analytics service are ready. If
// either is not ready the service is exposed as not healthy.
func (a *app) readiness(ctx context.Context, _ *http.Request) web.Encoder {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := sqldb.StatusCheck(ctx, a.db); err != nil {
		a.log.Info(ctx, "readiness failure", "check", "database", "err", err)
		return errs.New(errs.Unavailable, err)
	}

	if err := a.metabase.StatusCheck(ctx); err != nil {
		a.log.Info(ctx, "readiness failure", "check", "metabase", "err", err)
		return errs.New(errs.Unavailable, err)
	}

	return Status{Status: "OK"}
}

// liveness returns simple status info if the service is alive. If the app is
// deployed to a Kubernetes cluster, it will also return pod, node, and
// namespace details via the Downward API. The Kubernetes environment
// variables need to be set within your Pod/Deployment manifest.
func (a *app) liveness(ctx context.Context, _ *http.Request) web.Encoder {
	host, err := os.Hostname()
	if err != nil {
		host = "unavailable"
	}

	info := Info{
		Status:     "up",
		Build:      a.build,
		Host:       host,
		Name:       os.Getenv("KUBERNETES_NAME"),
		PodIP:      os.Getenv("KUBERNETES_POD_IP"),
		Node:       os.Getenv("KUBERNETES_NODE_NAME"),
		Namespace:  os.Getenv("KUBERNETES_NAMESPACE"),
		GOMAXPROCS: runtime.GOMAXPROCS(0),
	}

	return info
}
