package dashboarddb

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hexalytics/portal/business/domain/dashboardbus"
	"github.com/hexalytics/portal/business/types/name"
)

type dashboardDB struct {
	ID          uuid.UUID      `db:"dashboard_id"`
	WorkspaceID uuid.UUID      `db:"workspace_id"`
	Name        string         `db:"name"`
	Description sql.NullString `db:"description"`
	UpstreamID  int            `db:"metabase_dashboard_id"`
	IsPublic    bool           `db:"is_public"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

func toDBDashboard(bus dashboardbus.Dashboard) dashboardDB {
	return dashboardDB{
		ID:          bus.ID,
		WorkspaceID: bus.WorkspaceID,
		Name:        bus.Name.String(),
		Description: sql.NullString{
			String: bus.Description,
			Valid:  bus.Description != "",
		},
		UpstreamID: bus.UpstreamID,
		IsPublic:   bus.IsPublic,
		CreatedAt:  bus.CreatedAt.UTC(),
		UpdatedAt:  bus.UpdatedAt.UTC(),
	}
}

func toBusDashboard(db dashboardDB) (dashboardbus.Dashboard, error) {
	nme, err := name.Parse(db.Name)
	if err != nil {
		return dashboardbus.Dashboard{}, fmt.Errorf("parse name: %w", err)
	}

	bus := dashboardbus.Dashboard{
		ID:          db.ID,
		WorkspaceID: db.WorkspaceID,
		Name:        nme,
		Description: db.Description.String,
		UpstreamID:  db.UpstreamID,
		IsPublic:    db.IsPublic,
		CreatedAt:   db.CreatedAt.In(time.Local),
		UpdatedAt:   db.UpdatedAt.In(time.Local),
	}

	return bus, nil
}

func toBusDashboards(dbs []dashboardDB) ([]dashboardbus.Dashboard, error) {
	bus := make([]dashboardbus.Dashboard, len(dbs))

	for i, db := range dbs {
		var err error
		bus[i], err = toBusDashboard(db)
		if err != nil {
			return nil, err
		}
	}

	return bus, nil
}
