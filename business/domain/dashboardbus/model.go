package dashboardbus

import (
	"time"

	"github.com/google/uuid"
	"github.com/hexalytics/portal/business/types/name"
)

// Dashboard represents a dashboard registered inside a workspace. UpstreamID
// is the id of the backing dashboard in the analytics service.
type Dashboard struct {
	ID          uuid.UUID
	WorkspaceID uuid.UUID
	Name        name.Name
	Description string
	UpstreamID  int
	IsPublic    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewDashboard contains information needed to create a new dashboard.
// CollectionID is the workspace collection the upstream dashboard is
// created in.
type NewDashboard struct {
	WorkspaceID  uuid.UUID
	CollectionID int
	Name         name.Name
	Description  string
	IsPublic     bool
}

// RegisterDashboard contains information needed to record a dashboard that
// already exists upstream.
type RegisterDashboard struct {
	WorkspaceID uuid.UUID
	Name        name.Name
	Description string
	UpstreamID  int
	IsPublic    bool
}

// UpdateDashboard contains information needed to update a dashboard.
type UpdateDashboard struct {
	Name        *name.Name
	Description *string
	IsPublic    *bool
}
