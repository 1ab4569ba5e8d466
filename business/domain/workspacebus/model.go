package workspacebus

import (
	"time"

	"github.com/google/uuid"
	"github.com/hexalytics/portal/business/types/memberrole"
	"github.com/hexalytics/portal/business/types/name"
)

// Workspace represents an isolated analytics area with its own upstream
// collection and permission group.
type Workspace struct {
	ID           uuid.UUID
	OwnerID      uuid.UUID
	Name         name.Name
	Description  string
	CollectionID int
	GroupID      int
	Enabled      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewWorkspace contains information needed to create a new workspace.
type NewWorkspace struct {
	OwnerID     uuid.UUID
	Name        name.Name
	Description string
}

// UpdateWorkspace contains information needed to update a workspace.
type UpdateWorkspace struct {
	Name        *name.Name
	Description *string
	Enabled     *bool
}

// Member represents a user's membership in a workspace.
type Member struct {
	WorkspaceID uuid.UUID
	UserID      uuid.UUID
	Role        memberrole.Role
	CreatedAt   time.Time
}

// NewMember contains information needed to add a member to a workspace.
type NewMember struct {
	WorkspaceID uuid.UUID
	UserID      uuid.UUID
	Role        memberrole.Role
}
