// Package dashboarddb contains dashboard related CRUD functionality.
package dashboarddb

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hexalytics/portal/business/domain/dashboardbus"
	"github.com/hexalytics/portal/business/sdk/sqldb"
	"github.com/hexalytics/portal/foundation/logger"
	"github.com/jmoiron/sqlx"
)

// Store manages the set of APIs for dashboard database access.
type Store struct {
	log *logger.Logger
	db  sqlx.ExtContext
}

// NewStore constructs the api for data access.
func NewStore(log *logger.Logger, db *sqlx.DB) *Store {
	return &Store{
		log: log,
		db:  db,
	}
}

// NewWithTx constructs a new Store value replacing the sqlx DB
// value with a sqlx DB value that is currently inside a transaction.
func (s *Store) NewWithTx(tx sqldb.CommitRollbacker) (dashboardbus.Storer, error) {
	ec, err := sqldb.GetExtContext(tx)
	if err != nil {
		return nil, err
	}

	store := Store{
		log: s.log,
		db:  ec,
	}

	return &store, nil
}

// Create inserts a new dashboard into the database.
func (s *Store) Create(ctx context.Context, dsh dashboardbus.Dashboard) error {
	const q = `
	INSERT INTO dashboards
		(dashboard_id, workspace_id, name, description, metabase_dashboard_id, is_public, created_at, updated_at)
	VALUES
		(:dashboard_id, :workspace_id, :name, :description, :metabase_dashboard_id, :is_public, :created_at, :updated_at)`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, toDBDashboard(dsh)); err != nil {
		var dupErr sqldb.ErrDBDuplicatedEntry
		if errors.As(err, &dupErr) {
			return fmt.Errorf("namedexeccontext: %w", dashboardbus.ErrUniqueName)
		}
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// Update replaces a dashboard document in the database.
func (s *Store) Update(ctx context.Context, dsh dashboardbus.Dashboard) error {
	const q = `
	UPDATE
		dashboards
	SET
		name = :name,
		description = :description,
		is_public = :is_public,
		updated_at = :updated_at
	WHERE
		dashboard_id = :dashboard_id`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, toDBDashboard(dsh)); err != nil {
		var dupErr sqldb.ErrDBDuplicatedEntry
		if errors.As(err, &dupErr) {
			return dashboardbus.ErrUniqueName
		}
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// Delete removes a dashboard from the database.
func (s *Store) Delete(ctx context.Context, dsh dashboardbus.Dashboard) error {
	const q = `
	DELETE FROM
		dashboards
	WHERE
		dashboard_id = :dashboard_id`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, toDBDashboard(dsh)); err != nil {
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// QueryByID gets the specified dashboard from the database.
func (s *Store) QueryByID(ctx context.Context, dashboardID uuid.UUID) (dashboardbus.Dashboard, error) {
	data := struct {
		ID string `db:"dashboard_id"`
	}{
		ID: dashboardID.String(),
	}

	const q = `
	SELECT
		dashboard_id, workspace_id, name, description, metabase_dashboard_id, is_public, created_at, updated_at
	FROM
		dashboards
	WHERE
		dashboard_id = :dashboard_id`

	var dbDsh dashboardDB
	if err := sqldb.NamedQueryStruct(ctx, s.log, s.db, q, data, &dbDsh); err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			return dashboardbus.Dashboard{}, fmt.Errorf("db: %w", dashboardbus.ErrNotFound)
		}
		return dashboardbus.Dashboard{}, fmt.Errorf("db: %w", err)
	}

	return toBusDashboard(dbDsh)
}

// QueryByWorkspace retrieves the dashboards for the specified workspace,
// newest first.
func (s *Store) QueryByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]dashboardbus.Dashboard, error) {
	data := struct {
		WorkspaceID string `db:"workspace_id"`
	}{
		WorkspaceID: workspaceID.String(),
	}

	const q = `
	SELECT
		dashboard_id, workspace_id, name, description, metabase_dashboard_id, is_public, created_at, updated_at
	FROM
		dashboards
	WHERE
		workspace_id = :workspace_id
	ORDER BY
		created_at DESC`

	var dbDshs []dashboardDB
	if err := sqldb.NamedQuerySlice(ctx, s.log, s.db, q, data, &dbDshs); err != nil {
		return nil, fmt.Errorf("namedqueryslice: %w", err)
	}

	return toBusDashboards(dbDshs)
}

// QueryByUpstreamID gets the dashboard that maps to the specified upstream
// dashboard id.
func (s *Store) QueryByUpstreamID(ctx context.Context, upstreamID int) (dashboardbus.Dashboard, error) {
	data := struct {
		UpstreamID int `db:"metabase_dashboard_id"`
	}{
		UpstreamID: upstreamID,
	}

	const q = `
	SELECT
		dashboard_id, workspace_id, name, description, metabase_dashboard_id, is_public, created_at, updated_at
	FROM
		dashboards
	WHERE
		metabase_dashboard_id = :metabase_dashboard_id`

	var dbDsh dashboardDB
	if err := sqldb.NamedQueryStruct(ctx, s.log, s.db, q, data, &dbDsh); err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			return dashboardbus.Dashboard{}, fmt.Errorf("db: %w", dashboardbus.ErrNotFound)
		}
		return dashboardbus.Dashboard{}, fmt.Errorf("db: %w", err)
	}

	return toBusDashboard(dbDsh)
}
