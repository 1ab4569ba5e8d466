package workspaceapp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hexalytics/portal/app/sdk/errs"
	"github.com/hexalytics/portal/business/domain/dashboardbus"
	"github.com/hexalytics/portal/business/domain/embedbus"
	"github.com/hexalytics/portal/business/domain/workspacebus"
	"github.com/hexalytics/portal/business/types/memberrole"
	"github.com/hexalytics/portal/business/types/name"
)

// Workspace is the workspace data returned to clients.
type Workspace struct {
	ID           string `json:"id"`
	OwnerID      string `json:"ownerId"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	CollectionID int    `json:"collectionId"`
	GroupID      int    `json:"groupId"`
	CreatedAt    string `json:"createdAt"`
	UpdatedAt    string `json:"updatedAt"`
}

// Encode implements the web.Encoder interface.
func (w Workspace) Encode() ([]byte, string, error) {
	data, err := json.Marshal(w)
	return data, "application/json", err
}

func toAppWorkspace(bus workspacebus.Workspace) Workspace {
	return Workspace{
		ID:           bus.ID.String(),
		OwnerID:      bus.OwnerID.String(),
		Name:         bus.Name.String(),
		Description:  bus.Description,
		CollectionID: bus.CollectionID,
		GroupID:      bus.GroupID,
		CreatedAt:    bus.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    bus.UpdatedAt.Format(time.RFC3339),
	}
}

// Workspaces supports encoding a list of workspaces.
type Workspaces []Workspace

// Encode implements the web.Encoder interface.
func (w Workspaces) Encode() ([]byte, string, error) {
	data, err := json.Marshal(w)
	return data, "application/json", err
}

func toAppWorkspaces(wss []workspacebus.Workspace) Workspaces {
	app := make(Workspaces, len(wss))
	for i, ws := range wss {
		app[i] = toAppWorkspace(ws)
	}

	return app
}

// =============================================================================

// NewWorkspace defines the data needed to create a workspace.
type NewWorkspace struct {
	Name        string `json:"name" validate:"required,min=3,max=60"`
	Description string `json:"description" validate:"max=500"`
}

// Decode implements the web.Decoder interface.
func (app *NewWorkspace) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

// Validate checks the data in the model is considered clean.
func (app NewWorkspace) Validate() error {
	if err := errs.Check(app); err != nil {
		return errs.New(errs.InvalidArgument, fmt.Errorf("validate: %w", err))
	}
	return nil
}

func toBusNewWorkspace(app NewWorkspace, ownerID uuid.UUID) (workspacebus.NewWorkspace, error) {
	nme, err := name.Parse(app.Name)
	if err != nil {
		return workspacebus.NewWorkspace{}, fmt.Errorf("parsing name: %w", err)
	}

	nw := workspacebus.NewWorkspace{
		OwnerID:     ownerID,
		Name:        nme,
		Description: app.Description,
	}

	return nw, nil
}

// =============================================================================

// UpdateWorkspace defines the data that can be changed on a workspace.
type UpdateWorkspace struct {
	Name        *string `json:"name" validate:"omitempty,min=3,max=60"`
	Description *string `json:"description" validate:"omitempty,max=500"`
}

// Decode implements the web.Decoder interface.
func (app *UpdateWorkspace) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

// Validate checks the data in the model is considered clean.
func (app UpdateWorkspace) Validate() error {
	if err := errs.Check(app); err != nil {
		return errs.New(errs.InvalidArgument, fmt.Errorf("validate: %w", err))
	}
	return nil
}

func toBusUpdateWorkspace(app UpdateWorkspace) (workspacebus.UpdateWorkspace, error) {
	var uw workspacebus.UpdateWorkspace

	if app.Name != nil {
		nme, err := name.Parse(*app.Name)
		if err != nil {
			return workspacebus.UpdateWorkspace{}, fmt.Errorf("parsing name: %w", err)
		}
		uw.Name = &nme
	}

	if app.Description != nil {
		uw.Description = app.Description
	}

	return uw, nil
}

// =============================================================================

// EmbedURL carries a signed embed URL and when it stops working.
type EmbedURL struct {
	URL       string `json:"url"`
	Resource  string `json:"resource"`
	ExpiresAt string `json:"expiresAt"`
}

// Encode implements the web.Encoder interface.
func (e EmbedURL) Encode() ([]byte, string, error) {
	data, err := json.Marshal(e)
	return data, "application/json", err
}

func toAppEmbedURL(bus embedbus.EmbedURL) EmbedURL {
	return EmbedURL{
		URL:       bus.URL,
		Resource:  bus.Resource.String(),
		ExpiresAt: bus.ExpiresAt.Format(time.RFC3339),
	}
}

// =============================================================================

// Dashboard is the dashboard data returned when listing a workspace.
type Dashboard struct {
	ID          string `json:"id"`
	WorkspaceID string `json:"workspaceId"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IsPublic    bool   `json:"isPublic"`
	CreatedAt   string `json:"createdAt"`
}

// Dashboards supports encoding a list of dashboards.
type Dashboards []Dashboard

// Encode implements the web.Encoder interface.
func (d Dashboards) Encode() ([]byte, string, error) {
	data, err := json.Marshal(d)
	return data, "application/json", err
}

func toAppDashboards(dshs []dashboardbus.Dashboard) Dashboards {
	app := make(Dashboards, len(dshs))
	for i, dsh := range dshs {
		app[i] = Dashboard{
			ID:          dsh.ID.String(),
			WorkspaceID: dsh.WorkspaceID.String(),
			Name:        dsh.Name.String(),
			Description: dsh.Description,
			IsPublic:    dsh.IsPublic,
			CreatedAt:   dsh.CreatedAt.Format(time.RFC3339),
		}
	}

	return app
}

// =============================================================================

// Member is the membership data returned to clients.
type Member struct {
	WorkspaceID string `json:"workspaceId"`
	UserID      string `json:"userId"`
	Role        string `json:"role"`
	CreatedAt   string `json:"createdAt"`
}

// Encode implements the web.Encoder interface.
func (m Member) Encode() ([]byte, string, error) {
	data, err := json.Marshal(m)
	return data, "application/json", err
}

func toAppMember(bus workspacebus.Member) Member {
	return Member{
		WorkspaceID: bus.WorkspaceID.String(),
		UserID:      bus.UserID.String(),
		Role:        bus.Role.String(),
		CreatedAt:   bus.CreatedAt.Format(time.RFC3339),
	}
}

// Members supports encoding a list of members.
type Members []Member

// Encode implements the web.Encoder interface.
func (m Members) Encode() ([]byte, string, error) {
	data, err := json.Marshal(m)
	return data, "application/json", err
}

func toAppMembers(mbrs []workspacebus.Member) Members {
	app := make(Members, len(mbrs))
	for i, mbr := range mbrs {
		app[i] = toAppMember(mbr)
	}

	return app
}

// =============================================================================

// NewMember defines the data needed to add a member to a workspace.
type NewMember struct {
	UserID string `json:"userId" validate:"required,uuid"`
	Role   string `json:"role" validate:"required"`
}

// Decode implements the web.Decoder interface.
func (app *NewMember) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

// Validate checks the data in the model is considered clean.
func (app NewMember) Validate() error {
	if err := errs.Check(app); err != nil {
		return errs.New(errs.InvalidArgument, fmt.Errorf("validate: %w", err))
	}
	return nil
}

func toBusNewMember(app NewMember, workspaceID uuid.UUID) (workspacebus.NewMember, error) {
	userID, err := uuid.Parse(app.UserID)
	if err != nil {
		return workspacebus.NewMember{}, fmt.Errorf("parsing userId: %w", err)
	}

	r, err := memberrole.Parse(app.Role)
	if err != nil {
		return workspacebus.NewMember{}, fmt.Errorf("parsing role: %w", err)
	}

	nm := workspacebus.NewMember{
		WorkspaceID: workspaceID,
		UserID:      userID,
		Role:        r,
	}

	return nm, nil
}
