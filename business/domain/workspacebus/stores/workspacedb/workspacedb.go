// Package workspacedb contains workspace related CRUD functionality.
package workspacedb

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hexalytics/portal/business/domain/workspacebus"
	"github.com/hexalytics/portal/business/sdk/sqldb"
	"github.com/hexalytics/portal/foundation/logger"
	"github.com/jmoiron/sqlx"
)

// Store manages the set of APIs for workspace database access.
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
func (s *Store) NewWithTx(tx sqldb.CommitRollbacker) (workspacebus.Storer, error) {
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

// Create inserts a new workspace into the database together with the owner
// membership row.
func (s *Store) Create(ctx context.Context, ws workspacebus.Workspace) error {
	const q = `
	WITH new_workspace AS (
		INSERT INTO workspaces
			(workspace_id, owner_id, name, description, collection_id, group_id, enabled, created_at, updated_at)
		VALUES
			(:workspace_id, :owner_id, :name, :description, :collection_id, :group_id, :enabled, :created_at, :updated_at)
		RETURNING workspace_id, owner_id, created_at
	)
	INSERT INTO workspace_members
		(workspace_id, user_id, role, created_at)
	SELECT
		workspace_id, owner_id, 'OWNER', created_at
	FROM
		new_workspace`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, toDBWorkspace(ws)); err != nil {
		var dupErr sqldb.ErrDBDuplicatedEntry
		if errors.As(err, &dupErr) {
			return fmt.Errorf("namedexeccontext: %w", workspacebus.ErrUniqueName)
		}
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// Update replaces a workspace document in the database.
func (s *Store) Update(ctx context.Context, ws workspacebus.Workspace) error {
	const q = `
	UPDATE
		workspaces
	SET
		name = :name,
		description = :description,
		enabled = :enabled,
		updated_at = :updated_at
	WHERE
		workspace_id = :workspace_id`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, toDBWorkspace(ws)); err != nil {
		var dupErr sqldb.ErrDBDuplicatedEntry
		if errors.As(err, &dupErr) {
			return workspacebus.ErrUniqueName
		}
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// Delete soft deletes a workspace by disabling it. The row and its
// memberships stay behind for audit.
func (s *Store) Delete(ctx context.Context, ws workspacebus.Workspace) error {
	const q = `
	UPDATE
		workspaces
	SET
		enabled = false,
		updated_at = :updated_at
	WHERE
		workspace_id = :workspace_id`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, toDBWorkspace(ws)); err != nil {
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// QueryByID gets the specified workspace from the database.
func (s *Store) QueryByID(ctx context.Context, workspaceID uuid.UUID) (workspacebus.Workspace, error) {
	data := struct {
		ID string `db:"workspace_id"`
	}{
		ID: workspaceID.String(),
	}

	const q = `
	SELECT
		workspace_id, owner_id, name, description, collection_id, group_id, enabled, created_at, updated_at
	FROM
		workspaces
	WHERE
		workspace_id = :workspace_id AND enabled = true`

	var dbWS workspaceDB
	if err := sqldb.NamedQueryStruct(ctx, s.log, s.db, q, data, &dbWS); err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			return workspacebus.Workspace{}, fmt.Errorf("db: %w", workspacebus.ErrNotFound)
		}
		return workspacebus.Workspace{}, fmt.Errorf("db: %w", err)
	}

	return toBusWorkspace(dbWS)
}

// QueryByUser retrieves the workspaces the user owns or is a member of,
// newest first.
func (s *Store) QueryByUser(ctx context.Context, userID uuid.UUID) ([]workspacebus.Workspace, error) {
	data := struct {
		UserID string `db:"user_id"`
	}{
		UserID: userID.String(),
	}

	const q = `
	SELECT DISTINCT
		w.workspace_id, w.owner_id, w.name, w.description, w.collection_id, w.group_id, w.enabled, w.created_at, w.updated_at
	FROM
		workspaces AS w
	LEFT JOIN
		workspace_members AS m ON m.workspace_id = w.workspace_id
	WHERE
		w.enabled = true AND (w.owner_id = :user_id OR m.user_id = :user_id)
	ORDER BY
		w.created_at DESC`

	var dbWSs []workspaceDB
	if err := sqldb.NamedQuerySlice(ctx, s.log, s.db, q, data, &dbWSs); err != nil {
		return nil, fmt.Errorf("namedqueryslice: %w", err)
	}

	return toBusWorkspaces(dbWSs)
}

// QueryAll retrieves every enabled workspace.
func (s *Store) QueryAll(ctx context.Context) ([]workspacebus.Workspace, error) {
	const q = `
	SELECT
		workspace_id, owner_id, name, description, collection_id, group_id, enabled, created_at, updated_at
	FROM
		workspaces
	WHERE
		enabled = true
	ORDER BY
		created_at DESC`

	var dbWSs []workspaceDB
	if err := sqldb.NamedQuerySlice(ctx, s.log, s.db, q, map[string]any{}, &dbWSs); err != nil {
		return nil, fmt.Errorf("namedqueryslice: %w", err)
	}

	return toBusWorkspaces(dbWSs)
}

// CheckAccess checks if a user owns or is a member of a workspace.
func (s *Store) CheckAccess(ctx context.Context, userID uuid.UUID, workspaceID uuid.UUID) error {
	data := struct {
		UserID      string `db:"user_id"`
		WorkspaceID string `db:"workspace_id"`
	}{
		UserID:      userID.String(),
		WorkspaceID: workspaceID.String(),
	}

	const q = `
	SELECT
		1
	FROM
		workspaces AS w
	LEFT JOIN
		workspace_members AS m ON m.workspace_id = w.workspace_id AND m.user_id = :user_id
	WHERE
		w.workspace_id = :workspace_id AND w.enabled = true AND (w.owner_id = :user_id OR m.user_id IS NOT NULL)`

	var result struct {
		Exists int `db:"?column?"`
	}

	if err := sqldb.NamedQueryStruct(ctx, s.log, s.db, q, data, &result); err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			return workspacebus.ErrAccessDenied
		}
		return fmt.Errorf("db: %w", err)
	}

	return nil
}

// AddMember inserts a membership row for the workspace.
func (s *Store) AddMember(ctx context.Context, mbr workspacebus.Member) error {
	const q = `
	INSERT INTO workspace_members
		(workspace_id, user_id, role, created_at)
	VALUES
		(:workspace_id, :user_id, :role, :created_at)
	ON CONFLICT (workspace_id, user_id) DO UPDATE SET role = :role`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, toDBMember(mbr)); err != nil {
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// RemoveMember removes a membership row from the workspace.
func (s *Store) RemoveMember(ctx context.Context, workspaceID uuid.UUID, userID uuid.UUID) error {
	data := struct {
		WorkspaceID string `db:"workspace_id"`
		UserID      string `db:"user_id"`
	}{
		WorkspaceID: workspaceID.String(),
		UserID:      userID.String(),
	}

	const q = `
	DELETE FROM
		workspace_members
	WHERE
		workspace_id = :workspace_id AND user_id = :user_id`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, data); err != nil {
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// QueryMembers retrieves the members of the workspace.
func (s *Store) QueryMembers(ctx context.Context, workspaceID uuid.UUID) ([]workspacebus.Member, error) {
	data := struct {
		WorkspaceID string `db:"workspace_id"`
	}{
		WorkspaceID: workspaceID.String(),
	}

	const q = `
	SELECT
		workspace_id, user_id, role, created_at
	FROM
		workspace_members
	WHERE
		workspace_id = :workspace_id
	ORDER BY
		created_at ASC`

	var dbMbrs []memberDB
	if err := sqldb.NamedQuerySlice(ctx, s.log, s.db, q, data, &dbMbrs); err != nil {
		return nil, fmt.Errorf("namedqueryslice: %w", err)
	}

	return toBusMembers(dbMbrs)
}
