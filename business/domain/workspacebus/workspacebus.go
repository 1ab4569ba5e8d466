// Package workspacebus provides business access to workspace domain.
package workspacebus

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hexalytics/portal/business/sdk/sqldb"
	"github.com/hexalytics/portal/foundation/logger"
	"github.com/hexalytics/portal/foundation/otel"
)

var (
	ErrNotFound     = errors.New("workspace not found")
	ErrUniqueName   = errors.New("workspace name is not unique for this owner")
	ErrAccessDenied = errors.New("access denied")
	ErrProvision    = errors.New("analytics provisioning failed")
)

// Provisioner declares the upstream analytics behavior required to give a
// workspace its own collection and permission group.
type Provisioner interface {
	CreateCollection(ctx context.Context, name string, description string) (int, error)
	RenameCollection(ctx context.Context, collectionID int, name string, description string) error
	ArchiveCollection(ctx context.Context, collectionID int) error
	CreateGroup(ctx context.Context, name string) (int, error)
	DeleteGroup(ctx context.Context, groupID int) error
	GrantCollectionAccess(ctx context.Context, groupID int, collectionID int) error
}

// Storer interface declares the behavior this package needs to persist and
// retrieve data.
type Storer interface {
	NewWithTx(tx sqldb.CommitRollbacker) (Storer, error)
	Create(ctx context.Context, ws Workspace) error
	Update(ctx context.Context, ws Workspace) error
	Delete(ctx context.Context, ws Workspace) error
	QueryByID(ctx context.Context, workspaceID uuid.UUID) (Workspace, error)
	QueryByUser(ctx context.Context, userID uuid.UUID) ([]Workspace, error)
	QueryAll(ctx context.Context) ([]Workspace, error)
	CheckAccess(ctx context.Context, userID uuid.UUID, workspaceID uuid.UUID) error
	AddMember(ctx context.Context, mbr Member) error
	RemoveMember(ctx context.Context, workspaceID uuid.UUID, userID uuid.UUID) error
	QueryMembers(ctx context.Context, workspaceID uuid.UUID) ([]Member, error)
}

// Core manages the set of APIs for workspace access.
type Core struct {
	log         *logger.Logger
	storer      Storer
	provisioner Provisioner
}

// NewCore constructs a workspace core API for use.
func NewCore(log *logger.Logger, storer Storer, provisioner Provisioner) *Core {
	return &Core{
		log:         log,
		storer:      storer,
		provisioner: provisioner,
	}
}

// NewWithTx constructs a new core value that will use the specified
// transaction in any store related calls.
func (c *Core) NewWithTx(tx sqldb.CommitRollbacker) (*Core, error) {
	storer, err := c.storer.NewWithTx(tx)
	if err != nil {
		return nil, fmt.Errorf("newwithtx: %w", err)
	}

	return NewCore(c.log, storer, c.provisioner), nil
}

// Create provisions the upstream collection and permission group for the new
// workspace and records it. If any upstream step or the local insert fails,
// whatever upstream resources were already created are removed again so no
// half-provisioned workspace survives.
func (c *Core) Create(ctx context.Context, nw NewWorkspace) (Workspace, error) {
	ctx, span := otel.AddSpan(ctx, "business.workspacebus.create")
	defer span.End()

	collectionID, err := c.provisioner.CreateCollection(ctx, nw.Name.String(), nw.Description)
	if err != nil {
		return Workspace{}, fmt.Errorf("create collection: %w: %w", ErrProvision, err)
	}

	groupName := fmt.Sprintf("workspace-%s-%s", nw.OwnerID, nw.Name.String())

	groupID, err := c.provisioner.CreateGroup(ctx, groupName)
	if err != nil {
		c.compensate(ctx, collectionID, 0)
		return Workspace{}, fmt.Errorf("create group: %w: %w", ErrProvision, err)
	}

	if err := c.provisioner.GrantCollectionAccess(ctx, groupID, collectionID); err != nil {
		c.compensate(ctx, collectionID, groupID)
		return Workspace{}, fmt.Errorf("grant access: %w: %w", ErrProvision, err)
	}

	now := time.Now()

	ws := Workspace{
		ID:           uuid.New(),
		OwnerID:      nw.OwnerID,
		Name:         nw.Name,
		Description:  nw.Description,
		CollectionID: collectionID,
		GroupID:      groupID,
		Enabled:      true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := c.storer.Create(ctx, ws); err != nil {
		c.compensate(ctx, collectionID, groupID)
		return Workspace{}, fmt.Errorf("create: %w", err)
	}

	return ws, nil
}

// Update modifies data about a workspace. A rename is propagated to the
// upstream collection before the local record changes.
func (c *Core) Update(ctx context.Context, ws Workspace, uw UpdateWorkspace) (Workspace, error) {
	ctx, span := otel.AddSpan(ctx, "business.workspacebus.update")
	defer span.End()

	if uw.Name != nil {
		ws.Name = *uw.Name
	}

	if uw.Description != nil {
		ws.Description = *uw.Description
	}

	if uw.Name != nil || uw.Description != nil {
		if err := c.provisioner.RenameCollection(ctx, ws.CollectionID, ws.Name.String(), ws.Description); err != nil {
			return Workspace{}, fmt.Errorf("rename collection: %w: %w", ErrProvision, err)
		}
	}

	if uw.Enabled != nil {
		ws.Enabled = *uw.Enabled
	}

	ws.UpdatedAt = time.Now()

	if err := c.storer.Update(ctx, ws); err != nil {
		return Workspace{}, fmt.Errorf("update: %w", err)
	}

	return ws, nil
}

// Delete disables the workspace record and then archives the upstream
// collection and deletes the permission group. Upstream cleanup is best
// effort, failures are logged and do not undo the local delete.
func (c *Core) Delete(ctx context.Context, ws Workspace) error {
	ctx, span := otel.AddSpan(ctx, "business.workspacebus.delete")
	defer span.End()

	ws.Enabled = false
	ws.UpdatedAt = time.Now()

	if err := c.storer.Delete(ctx, ws); err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	if err := c.provisioner.ArchiveCollection(ctx, ws.CollectionID); err != nil {
		c.log.Error(ctx, "workspace delete: archive collection", "workspace_id", ws.ID, "collection_id", ws.CollectionID, "err", err)
	}

	if err := c.provisioner.DeleteGroup(ctx, ws.GroupID); err != nil {
		c.log.Error(ctx, "workspace delete: delete group", "workspace_id", ws.ID, "group_id", ws.GroupID, "err", err)
	}

	return nil
}

// QueryByID finds the workspace by the specified ID.
func (c *Core) QueryByID(ctx context.Context, workspaceID uuid.UUID) (Workspace, error) {
	ctx, span := otel.AddSpan(ctx, "business.workspacebus.querybyid")
	defer span.End()

	ws, err := c.storer.QueryByID(ctx, workspaceID)
	if err != nil {
		return Workspace{}, fmt.Errorf("query: workspaceID[%s]: %w", workspaceID, err)
	}

	return ws, nil
}

// QueryByUser retrieves the workspaces the user owns or is a member of,
// newest first.
func (c *Core) QueryByUser(ctx context.Context, userID uuid.UUID) ([]Workspace, error) {
	ctx, span := otel.AddSpan(ctx, "business.workspacebus.querybyuser")
	defer span.End()

	wss, err := c.storer.QueryByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("query: userID[%s]: %w", userID, err)
	}

	return wss, nil
}

// QueryAll retrieves every enabled workspace. Used by administrative
// tooling that reconciles upstream state.
func (c *Core) QueryAll(ctx context.Context) ([]Workspace, error) {
	ctx, span := otel.AddSpan(ctx, "business.workspacebus.queryall")
	defer span.End()

	wss, err := c.storer.QueryAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("queryall: %w", err)
	}

	return wss, nil
}

// CheckAccess checks if the user owns or is a member of the workspace.
// Returns nil if allowed, ErrAccessDenied if denied.
func (c *Core) CheckAccess(ctx context.Context, userID uuid.UUID, workspaceID uuid.UUID) error {
	ctx, span := otel.AddSpan(ctx, "business.workspacebus.checkaccess")
	defer span.End()

	if err := c.storer.CheckAccess(ctx, userID, workspaceID); err != nil {
		return fmt.Errorf("checkaccess: %w", err)
	}

	return nil
}

// AddMember grants a user membership in the workspace.
func (c *Core) AddMember(ctx context.Context, nm NewMember) (Member, error) {
	ctx, span := otel.AddSpan(ctx, "business.workspacebus.addmember")
	defer span.End()

	mbr := Member{
		WorkspaceID: nm.WorkspaceID,
		UserID:      nm.UserID,
		Role:        nm.Role,
		CreatedAt:   time.Now(),
	}

	if err := c.storer.AddMember(ctx, mbr); err != nil {
		return Member{}, fmt.Errorf("addmember: %w", err)
	}

	return mbr, nil
}

// RemoveMember revokes a user's membership in the workspace.
func (c *Core) RemoveMember(ctx context.Context, workspaceID uuid.UUID, userID uuid.UUID) error {
	ctx, span := otel.AddSpan(ctx, "business.workspacebus.removemember")
	defer span.End()

	if err := c.storer.RemoveMember(ctx, workspaceID, userID); err != nil {
		return fmt.Errorf("removemember: %w", err)
	}

	return nil
}

// QueryMembers retrieves the members of the workspace.
func (c *Core) QueryMembers(ctx context.Context, workspaceID uuid.UUID) ([]Member, error) {
	ctx, span := otel.AddSpan(ctx, "business.workspacebus.querymembers")
	defer span.End()

	mbrs, err := c.storer.QueryMembers(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("querymembers: %w", err)
	}

	return mbrs, nil
}

// compensate removes upstream resources created during a failed provisioning
// attempt. Failures here are logged only, the original error wins.
func (c *Core) compensate(ctx context.Context, collectionID int, groupID int) {
	if collectionID != 0 {
		if err := c.provisioner.ArchiveCollection(ctx, collectionID); err != nil {
			c.log.Error(ctx, "provision compensate: archive collection", "collection_id", collectionID, "err", err)
		}
	}

	if groupID != 0 {
		if err := c.provisioner.DeleteGroup(ctx, groupID); err != nil {
			c.log.Error(ctx, "provision compensate: delete group", "group_id", groupID, "err", err)
		}
	}
}
