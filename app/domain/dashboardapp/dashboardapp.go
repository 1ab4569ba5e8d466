// Package dashboardapp maintains the app layer api for the dashboard domain.
package dashboardapp

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/hexalytics/portal/app/sdk/errs"
	"github.com/hexalytics/portal/app/sdk/mid"
	"github.com/hexalytics/portal/business/domain/dashboardbus"
	"github.com/hexalytics/portal/business/domain/embedbus"
	"github.com/hexalytics/portal/business/domain/workspacebus"
	"github.com/hexalytics/portal/business/sdk/web"
)

// app manages the set of app layer api functions for the dashboard domain.
type app struct {
	dashboardBus *dashboardbus.Core
	workspaceBus *workspacebus.Core
	embedBus     *embedbus.Core
}

// newApp constructs a dashboard app API for use.
func newApp(dashboardBus *dashboardbus.Core, workspaceBus *workspacebus.Core, embedBus *embedbus.Core) *app {
	return &app{
		dashboardBus: dashboardBus,
		workspaceBus: workspaceBus,
		embedBus:     embedBus,
	}
}

// create registers a new dashboard inside a workspace the caller can access.
// The upstream dashboard is created in the workspace collection first; no
// local row is written if that fails.
func (a *app) create(ctx context.Context, r *http.Request) web.Encoder {
	var app NewDashboard
	if err := web.Decode(r, &app); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	userID, err := mid.GetUserID(ctx)
	if err != nil {
		return errs.New(errs.Unauthenticated, err)
	}

	workspaceID, err := uuid.Parse(app.WorkspaceID)
	if err != nil {
		return errs.NewFieldErrors("workspaceId", err)
	}

	ws, err := a.workspaceBus.QueryByID(ctx, workspaceID)
	if err != nil {
		if errors.Is(err, workspacebus.ErrNotFound) {
			return errs.New(errs.NotFound, workspacebus.ErrNotFound)
		}
		return errs.Errorf(errs.Internal, "querybyid: workspaceID[%s]: %s", workspaceID, err)
	}

	if err := a.workspaceBus.CheckAccess(ctx, userID, workspaceID); err != nil {
		return errs.New(errs.PermissionDenied, workspacebus.ErrAccessDenied)
	}

	nd, err := toBusNewDashboard(app, ws)
	if err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	dsh, err := a.dashboardBus.Create(ctx, nd)
	if err != nil {
		switch {
		case errors.Is(err, dashboardbus.ErrUniqueName):
			return errs.New(errs.Aborted, dashboardbus.ErrUniqueName)
		case errors.Is(err, dashboardbus.ErrProvision):
			return errs.New(errs.Unavailable, dashboardbus.ErrProvision)
		}
		return errs.Errorf(errs.InternalOnlyLog, "create: name[%s]: %s", app.Name, err)
	}

	return toAppDashboard(dsh)
}

// queryByID returns the dashboard plus a fresh embed URL.
func (a *app) queryByID(ctx context.Context, r *http.Request) web.Encoder {
	userID, err := mid.GetUserID(ctx)
	if err != nil {
		return errs.New(errs.Unauthenticated, err)
	}

	dashboardID, err := uuid.Parse(web.Param(r, "dashboard_id"))
	if err != nil {
		return errs.NewFieldErrors("dashboard_id", err)
	}

	dsh, err := a.dashboardBus.QueryByID(ctx, dashboardID)
	if err != nil {
		if errors.Is(err, dashboardbus.ErrNotFound) {
			return errs.New(errs.NotFound, dashboardbus.ErrNotFound)
		}
		return errs.Errorf(errs.Internal, "querybyid: dashboardID[%s]: %s", dashboardID, err)
	}

	eu, err := a.embedBus.DashboardURL(ctx, userID, dashboardID)
	if err != nil {
		switch {
		case errors.Is(err, embedbus.ErrNotFound):
			return errs.New(errs.NotFound, embedbus.ErrNotFound)
		case errors.Is(err, embedbus.ErrAccessDenied):
			return errs.New(errs.PermissionDenied, embedbus.ErrAccessDenied)
		}
		return errs.Errorf(errs.InternalOnlyLog, "embed: dashboardID[%s]: %s", dashboardID, err)
	}

	return toAppDashboardWithEmbed(dsh, eu)
}

// embed returns only a fresh signed URL for the dashboard.
func (a *app) embed(ctx context.Context, r *http.Request) web.Encoder {
	userID, err := mid.GetUserID(ctx)
	if err != nil {
		return errs.New(errs.Unauthenticated, err)
	}

	dashboardID, err := uuid.Parse(web.Param(r, "dashboard_id"))
	if err != nil {
		return errs.NewFieldErrors("dashboard_id", err)
	}

	eu, err := a.embedBus.DashboardURL(ctx, userID, dashboardID)
	if err != nil {
		switch {
		case errors.Is(err, embedbus.ErrNotFound):
			return errs.New(errs.NotFound, embedbus.ErrNotFound)
		case errors.Is(err, embedbus.ErrAccessDenied):
			return errs.New(errs.PermissionDenied, embedbus.ErrAccessDenied)
		}
		return errs.Errorf(errs.InternalOnlyLog, "embed: dashboardID[%s]: %s", dashboardID, err)
	}

	return toAppEmbedURL(eu)
}
