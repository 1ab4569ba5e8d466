// Package workspaceapp maintains the app layer api for the workspace domain.
package workspaceapp

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

// app manages the set of app layer api functions for the workspace domain.
type app struct {
	workspaceBus *workspacebus.Core
	dashboardBus *dashboardbus.Core
	embedBus     *embedbus.Core
}

// newApp constructs a workspace app API for use.
func newApp(workspaceBus *workspacebus.Core, dashboardBus *dashboardbus.Core, embedBus *embedbus.Core) *app {
	return &app{
		workspaceBus: workspaceBus,
		dashboardBus: dashboardBus,
		embedBus:     embedBus,
	}
}

// create provisions and registers a new workspace owned by the caller.
func (a *app) create(ctx context.Context, r *http.Request) web.Encoder {
	var app NewWorkspace
	if err := web.Decode(r, &app); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	userID, err := mid.GetUserID(ctx)
	if err != nil {
		return errs.New(errs.Unauthenticated, err)
	}

	nw, err := toBusNewWorkspace(app, userID)
	if err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	ws, err := a.workspaceBus.Create(ctx, nw)
	if err != nil {
		switch {
		case errors.Is(err, workspacebus.ErrUniqueName):
			return errs.New(errs.Aborted, workspacebus.ErrUniqueName)
		case errors.Is(err, workspacebus.ErrProvision):
			return errs.New(errs.Unavailable, workspacebus.ErrProvision)
		}
		return errs.Errorf(errs.InternalOnlyLog, "create: name[%s]: %s", app.Name, err)
	}

	return toAppWorkspace(ws)
}

// query lists the workspaces the caller owns or is a member of.
func (a *app) query(ctx context.Context, _ *http.Request) web.Encoder {
	userID, err := mid.GetUserID(ctx)
	if err != nil {
		return errs.New(errs.Unauthenticated, err)
	}

	wss, err := a.workspaceBus.QueryByUser(ctx, userID)
	if err != nil {
		return errs.Errorf(errs.Internal, "query: %s", err)
	}

	return toAppWorkspaces(wss)
}

// queryByID returns a single workspace the caller has access to.
func (a *app) queryByID(ctx context.Context, r *http.Request) web.Encoder {
	ws, appErr := a.loadAccessible(ctx, r)
	if appErr != nil {
		return appErr
	}

	return toAppWorkspace(ws)
}

// update edits the name or description. Owner only. A rename is propagated
// upstream.
func (a *app) update(ctx context.Context, r *http.Request) web.Encoder {
	var app UpdateWorkspace
	if err := web.Decode(r, &app); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	ws, appErr := a.loadOwned(ctx, r)
	if appErr != nil {
		return appErr
	}

	uw, err := toBusUpdateWorkspace(app)
	if err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	updWS, err := a.workspaceBus.Update(ctx, ws, uw)
	if err != nil {
		switch {
		case errors.Is(err, workspacebus.ErrUniqueName):
			return errs.New(errs.Aborted, workspacebus.ErrUniqueName)
		case errors.Is(err, workspacebus.ErrProvision):
			return errs.New(errs.Unavailable, workspacebus.ErrProvision)
		}
		return errs.Errorf(errs.InternalOnlyLog, "update: workspaceID[%s]: %s", ws.ID, err)
	}

	return toAppWorkspace(updWS)
}

// delete disables the workspace and retires the upstream resources. Owner
// only.
func (a *app) delete(ctx context.Context, r *http.Request) web.Encoder {
	ws, appErr := a.loadOwned(ctx, r)
	if appErr != nil {
		return appErr
	}

	if err := a.workspaceBus.Delete(ctx, ws); err != nil {
		return errs.Errorf(errs.InternalOnlyLog, "delete: workspaceID[%s]: %s", ws.ID, err)
	}

	return nil
}

// embed returns a signed URL rendering the workspace collection.
func (a *app) embed(ctx context.Context, r *http.Request) web.Encoder {
	userID, err := mid.GetUserID(ctx)
	if err != nil {
		return errs.New(errs.Unauthenticated, err)
	}

	workspaceID, err := uuid.Parse(web.Param(r, "workspace_id"))
	if err != nil {
		return errs.NewFieldErrors("workspace_id", err)
	}

	eu, err := a.embedBus.WorkspaceURL(ctx, userID, workspaceID)
	if err != nil {
		switch {
		case errors.Is(err, embedbus.ErrNotFound):
			return errs.New(errs.NotFound, embedbus.ErrNotFound)
		case errors.Is(err, embedbus.ErrAccessDenied):
			return errs.New(errs.PermissionDenied, embedbus.ErrAccessDenied)
		}
		return errs.Errorf(errs.InternalOnlyLog, "embed: workspaceID[%s]: %s", workspaceID, err)
	}

	return toAppEmbedURL(eu)
}

// dashboards lists the dashboards registered in the workspace.
func (a *app) dashboards(ctx context.Context, r *http.Request) web.Encoder {
	ws, appErr := a.loadAccessible(ctx, r)
	if appErr != nil {
		return appErr
	}

	dshs, err := a.dashboardBus.QueryByWorkspace(ctx, ws.ID)
	if err != nil {
		return errs.Errorf(errs.Internal, "query dashboards: workspaceID[%s]: %s", ws.ID, err)
	}

	return toAppDashboards(dshs)
}

// addMember grants another user membership. Owner only.
func (a *app) addMember(ctx context.Context, r *http.Request) web.Encoder {
	var app NewMember
	if err := web.Decode(r, &app); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	ws, appErr := a.loadOwned(ctx, r)
	if appErr != nil {
		return appErr
	}

	nm, err := toBusNewMember(app, ws.ID)
	if err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	mbr, err := a.workspaceBus.AddMember(ctx, nm)
	if err != nil {
		return errs.Errorf(errs.InternalOnlyLog, "addmember: workspaceID[%s]: %s", ws.ID, err)
	}

	return toAppMember(mbr)
}

// removeMember revokes a user's membership. Owner only.
func (a *app) removeMember(ctx context.Context, r *http.Request) web.Encoder {
	ws, appErr := a.loadOwned(ctx, r)
	if appErr != nil {
		return appErr
	}

	memberID, err := uuid.Parse(web.Param(r, "user_id"))
	if err != nil {
		return errs.NewFieldErrors("user_id", err)
	}

	if memberID == ws.OwnerID {
		return errs.Errorf(errs.FailedPrecondition, "owner cannot be removed from workspace")
	}

	if err := a.workspaceBus.RemoveMember(ctx, ws.ID, memberID); err != nil {
		return errs.Errorf(errs.InternalOnlyLog, "removemember: workspaceID[%s]: %s", ws.ID, err)
	}

	return nil
}

// members lists the workspace memberships.
func (a *app) members(ctx context.Context, r *http.Request) web.Encoder {
	ws, appErr := a.loadAccessible(ctx, r)
	if appErr != nil {
		return appErr
	}

	mbrs, err := a.workspaceBus.QueryMembers(ctx, ws.ID)
	if err != nil {
		return errs.Errorf(errs.Internal, "querymembers: workspaceID[%s]: %s", ws.ID, err)
	}

	return toAppMembers(mbrs)
}

// loadAccessible resolves the path workspace and verifies the caller can
// see it.
func (a *app) loadAccessible(ctx context.Context, r *http.Request) (workspacebus.Workspace, web.Encoder) {
	userID, err := mid.GetUserID(ctx)
	if err != nil {
		return workspacebus.Workspace{}, errs.New(errs.Unauthenticated, err)
	}

	workspaceID, err := uuid.Parse(web.Param(r, "workspace_id"))
	if err != nil {
		return workspacebus.Workspace{}, errs.NewFieldErrors("workspace_id", err)
	}

	ws, err := a.workspaceBus.QueryByID(ctx, workspaceID)
	if err != nil {
		if errors.Is(err, workspacebus.ErrNotFound) {
			return workspacebus.Workspace{}, errs.New(errs.NotFound, workspacebus.ErrNotFound)
		}
		return workspacebus.Workspace{}, errs.Errorf(errs.Internal, "querybyid: workspaceID[%s]: %s", workspaceID, err)
	}

	if err := a.workspaceBus.CheckAccess(ctx, userID, workspaceID); err != nil {
		return workspacebus.Workspace{}, errs.New(errs.PermissionDenied, workspacebus.ErrAccessDenied)
	}

	return ws, nil
}

// loadOwned resolves the path workspace and verifies the caller owns it.
func (a *app) loadOwned(ctx context.Context, r *http.Request) (workspacebus.Workspace, web.Encoder) {
	userID, err := mid.GetUserID(ctx)
	if err != nil {
		return workspacebus.Workspace{}, errs.New(errs.Unauthenticated, err)
	}

	workspaceID, err := uuid.Parse(web.Param(r, "workspace_id"))
	if err != nil {
		return workspacebus.Workspace{}, errs.NewFieldErrors("workspace_id", err)
	}

	ws, err := a.workspaceBus.QueryByID(ctx, workspaceID)
	if err != nil {
		if errors.Is(err, workspacebus.ErrNotFound) {
			return workspacebus.Workspace{}, errs.New(errs.NotFound, workspacebus.ErrNotFound)
		}
		return workspacebus.Workspace{}, errs.Errorf(errs.Internal, "querybyid: workspaceID[%s]: %s", workspaceID, err)
	}

	if ws.OwnerID != userID {
		return workspacebus.Workspace{}, errs.New(errs.PermissionDenied, workspacebus.ErrAccessDenied)
	}

	return ws, nil
}
