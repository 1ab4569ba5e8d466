// Package dashboardbus provides business access to dashboard domain.
package dashboardbus

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
	ErrNotFound   = errors.New("dashboard not found")
	ErrUniqueName = errors.New("dashboard name is not unique in this workspace")
	ErrProvision  = errors.New("analytics provisioning failed")
)

// Builder declares the upstream analytics behavior required to create and
// retire dashboards inside a workspace collection.
type Builder interface {
	CreateDashboard(ctx context.Context, name string, collectionID int) (int, error)
	ArchiveDashboard(ctx context.Context, dashboardID int) error
}

// Storer interface declares the behavior this package needs to persist and
// retrieve data.
type Storer interface {
	NewWithTx(tx sqldb.CommitRollbacker) (Storer, error)
	Create(ctx context.Context, dsh Dashboard) error
	Update(ctx context.Context, dsh Dashboard) error
	Delete(ctx context.Context, dsh Dashboard) error
	QueryByID(ctx context.Context, dashboardID uuid.UUID) (Dashboard, error)
	QueryByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]Dashboard, error)
	QueryByUpstreamID(ctx context.Context, upstreamID int) (Dashboard, error)
}

// Core manages the set of APIs for dashboard access.
type Core struct {
	log     *logger.Logger
	storer  Storer
	builder Builder
}

// NewCore constructs a dashboard core API for use.
func NewCore(log *logger.Logger, storer Storer, builder Builder) *Core {
	return &Core{
		log:     log,
		storer:  storer,
		builder: builder,
	}
}

// NewWithTx constructs a new core value that will use the specified
// transaction in any store related calls.
func (c *Core) NewWithTx(tx sqldb.CommitRollbacker) (*Core, error) {
	storer, err := c.storer.NewWithTx(tx)
	if err != nil {
		return nil, fmt.Errorf("newwithtx: %w", err)
	}

	return NewCore(c.log, storer, c.builder), nil
}

// Create builds the upstream dashboard inside the workspace collection and
// records it locally. If the local insert fails the upstream dashboard is
// archived again, best effort.
func (c *Core) Create(ctx context.Context, nd NewDashboard) (Dashboard, error) {
	ctx, span := otel.AddSpan(ctx, "business.dashboardbus.create")
	defer span.End()

	upstreamID, err := c.builder.CreateDashboard(ctx, nd.Name.String(), nd.CollectionID)
	if err != nil {
		return Dashboard{}, fmt.Errorf("create upstream dashboard: %w: %w", ErrProvision, err)
	}

	now := time.Now()

	dsh := Dashboard{
		ID:          uuid.New(),
		WorkspaceID: nd.WorkspaceID,
		Name:        nd.Name,
		Description: nd.Description,
		UpstreamID:  upstreamID,
		IsPublic:    nd.IsPublic,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := c.storer.Create(ctx, dsh); err != nil {
		if aerr := c.builder.ArchiveDashboard(ctx, upstreamID); aerr != nil {
			c.log.Error(ctx, "dashboard create compensate: archive", "upstream_id", upstreamID, "err", aerr)
		}
		return Dashboard{}, fmt.Errorf("create: %w", err)
	}

	return dsh, nil
}

// Register records a dashboard that already exists upstream without creating
// it again. Used when reconciling dashboards that were built directly in the
// analytics instance.
func (c *Core) Register(ctx context.Context, rd RegisterDashboard) (Dashboard, error) {
	ctx, span := otel.AddSpan(ctx, "business.dashboardbus.register")
	defer span.End()

	now := time.Now()

	dsh := Dashboard{
		ID:          uuid.New(),
		WorkspaceID: rd.WorkspaceID,
		Name:        rd.Name,
		Description: rd.Description,
		UpstreamID:  rd.UpstreamID,
		IsPublic:    rd.IsPublic,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := c.storer.Create(ctx, dsh); err != nil {
		return Dashboard{}, fmt.Errorf("register: %w", err)
	}

	return dsh, nil
}

// Update modifies data about a dashboard.
func (c *Core) Update(ctx context.Context, dsh Dashboard, ud UpdateDashboard) (Dashboard, error) {
	ctx, span := otel.AddSpan(ctx, "business.dashboardbus.update")
	defer span.End()

	if ud.Name != nil {
		dsh.Name = *ud.Name
	}

	if ud.Description != nil {
		dsh.Description = *ud.Description
	}

	if ud.IsPublic != nil {
		dsh.IsPublic = *ud.IsPublic
	}

	dsh.UpdatedAt = time.Now()

	if err := c.storer.Update(ctx, dsh); err != nil {
		return Dashboard{}, fmt.Errorf("update: %w", err)
	}

	return dsh, nil
}

// Delete removes the dashboard record and archives the upstream dashboard.
// Upstream archiving is best effort.
func (c *Core) Delete(ctx context.Context, dsh Dashboard) error {
	ctx, span := otel.AddSpan(ctx, "business.dashboardbus.delete")
	defer span.End()

	if err := c.storer.Delete(ctx, dsh); err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	if err := c.builder.ArchiveDashboard(ctx, dsh.UpstreamID); err != nil {
		c.log.Error(ctx, "dashboard delete: archive upstream", "dashboard_id", dsh.ID, "upstream_id", dsh.UpstreamID, "err", err)
	}

	return nil
}

// QueryByID finds the dashboard by the specified ID.
func (c *Core) QueryByID(ctx context.Context, dashboardID uuid.UUID) (Dashboard, error) {
	ctx, span := otel.AddSpan(ctx, "business.dashboardbus.querybyid")
	defer span.End()

	dsh, err := c.storer.QueryByID(ctx, dashboardID)
	if err != nil {
		return Dashboard{}, fmt.Errorf("query: dashboardID[%s]: %w", dashboardID, err)
	}

	return dsh, nil
}

// QueryByWorkspace retrieves the dashboards that belong to the workspace.
func (c *Core) QueryByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]Dashboard, error) {
	ctx, span := otel.AddSpan(ctx, "business.dashboardbus.querybyworkspace")
	defer span.End()

	dshs, err := c.storer.QueryByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("query: workspaceID[%s]: %w", workspaceID, err)
	}

	return dshs, nil
}

// QueryByUpstreamID finds the dashboard record for an upstream dashboard id.
func (c *Core) QueryByUpstreamID(ctx context.Context, upstreamID int) (Dashboard, error) {
	ctx, span := otel.AddSpan(ctx, "business.dashboardbus.querybyupstreamid")
	defer span.End()

	dsh, err := c.storer.QueryByUpstreamID(ctx, upstreamID)
	if err != nil {
		return Dashboard{}, fmt.Errorf("query: upstreamID[%d]: %w", upstreamID, err)
	}

	return dsh, nil
}
