package workspacedb

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hexalytics/portal/business/domain/workspacebus"
	"github.com/hexalytics/portal/business/types/memberrole"
	"github.com/hexalytics/portal/business/types/name"
)

type workspaceDB struct {
	ID           uuid.UUID      `db:"workspace_id"`
	OwnerID      uuid.UUID      `db:"owner_id"`
	Name         string         `db:"name"`
	Description  sql.NullString `db:"description"`
	CollectionID int            `db:"collection_id"`
	GroupID      int            `db:"group_id"`
	Enabled      bool           `db:"enabled"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

func toDBWorkspace(bus workspacebus.Workspace) workspaceDB {
	return workspaceDB{
		ID:      bus.ID,
		OwnerID: bus.OwnerID,
		Name:    bus.Name.String(),
		Description: sql.NullString{
			String: bus.Description,
			Valid:  bus.Description != "",
		},
		CollectionID: bus.CollectionID,
		GroupID:      bus.GroupID,
		Enabled:      bus.Enabled,
		CreatedAt:    bus.CreatedAt.UTC(),
		UpdatedAt:    bus.UpdatedAt.UTC(),
	}
}

func toBusWorkspace(db workspaceDB) (workspacebus.Workspace, error) {
	nme, err := name.Parse(db.Name)
	if err != nil {
		return workspacebus.Workspace{}, fmt.Errorf("parse name: %w", err)
	}

	bus := workspacebus.Workspace{
		ID:           db.ID,
		OwnerID:      db.OwnerID,
		Name:         nme,
		Description:  db.Description.String,
		CollectionID: db.CollectionID,
		GroupID:      db.GroupID,
		Enabled:      db.Enabled,
		CreatedAt:    db.CreatedAt.In(time.Local),
		UpdatedAt:    db.UpdatedAt.In(time.Local),
	}

	return bus, nil
}

func toBusWorkspaces(dbs []workspaceDB) ([]workspacebus.Workspace, error) {
	bus := make([]workspacebus.Workspace, len(dbs))

	for i, db := range dbs {
		var err error
		bus[i], err = toBusWorkspace(db)
		if err != nil {
			return nil, err
		}
	}

	return bus, nil
}

// =============================================================================

type memberDB struct {
	WorkspaceID uuid.UUID `db:"workspace_id"`
	UserID      uuid.UUID `db:"user_id"`
	Role        string    `db:"role"`
	CreatedAt   time.Time `db:"created_at"`
}

func toDBMember(bus workspacebus.Member) memberDB {
	return memberDB{
		WorkspaceID: bus.WorkspaceID,
		UserID:      bus.UserID,
		Role:        bus.Role.String(),
		CreatedAt:   bus.CreatedAt.UTC(),
	}
}

func toBusMember(db memberDB) (workspacebus.Member, error) {
	r, err := memberrole.Parse(db.Role)
	if err != nil {
		return workspacebus.Member{}, fmt.Errorf("parse role: %w", err)
	}

	bus := workspacebus.Member{
		WorkspaceID: db.WorkspaceID,
		UserID:      db.UserID,
		Role:        r,
		CreatedAt:   db.CreatedAt.In(time.Local),
	}

	return bus, nil
}

func toBusMembers(dbs []memberDB) ([]workspacebus.Member, error) {
	bus := make([]workspacebus.Member, len(dbs))

	for i, db := range dbs {
		var err error
		bus[i], err = toBusMember(db)
		if err != nil {
			return nil, err
		}
	}

	return bus, nil
}
