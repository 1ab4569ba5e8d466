package dashboardapp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hexalytics/portal/app/sdk/errs"
	"github.com/hexalytics/portal/business/domain/dashboardbus"
	"github.com/hexalytics/portal/business/domain/embedbus"
	"github.com/hexalytics/portal/business/domain/workspacebus"
	"github.com/hexalytics/portal/business/types/name"
)

// Dashboard is the dashboard data returned to clients.
type Dashboard struct {
	ID          string `json:"id"`
	WorkspaceID string `json:"workspaceId"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IsPublic    bool   `json:"isPublic"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

// Encode implements the web.Encoder interface.
func (d Dashboard) Encode() ([]byte, string, error) {
	data, err := json.Marshal(d)
	return data, "application/json", err
}

func toAppDashboard(bus dashboardbus.Dashboard) Dashboard {
	return Dashboard{
		ID:          bus.ID.String(),
		WorkspaceID: bus.WorkspaceID.String(),
		Name:        bus.Name.String(),
		Description: bus.Description,
		IsPublic:    bus.IsPublic,
		CreatedAt:   bus.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   bus.UpdatedAt.Format(time.RFC3339),
	}
}

// DashboardWithEmbed is a dashboard together with a fresh signed URL.
type DashboardWithEmbed struct {
	Dashboard
	EmbedURL  string `json:"embedUrl"`
	ExpiresAt string `json:"expiresAt"`
}

// Encode implements the web.Encoder interface.
func (d DashboardWithEmbed) Encode() ([]byte, string, error) {
	data, err := json.Marshal(d)
	return data, "application/json", err
}

func toAppDashboardWithEmbed(bus dashboardbus.Dashboard, eu embedbus.EmbedURL) DashboardWithEmbed {
	return DashboardWithEmbed{
		Dashboard: toAppDashboard(bus),
		EmbedURL:  eu.URL,
		ExpiresAt: eu.ExpiresAt.Format(time.RFC3339),
	}
}

// =============================================================================

// EmbedURL carries a signed embed URL and its remaining lifetime.
type EmbedURL struct {
	URL              string `json:"url"`
	Resource         string `json:"resource"`
	ExpiresInMinutes int    `json:"expiresInMinutes"`
}

// Encode implements the web.Encoder interface.
func (e EmbedURL) Encode() ([]byte, string, error) {
	data, err := json.Marshal(e)
	return data, "application/json", err
}

func toAppEmbedURL(bus embedbus.EmbedURL) EmbedURL {
	mins := int(time.Until(bus.ExpiresAt).Round(time.Minute) / time.Minute)

	return EmbedURL{
		URL:              bus.URL,
		Resource:         bus.Resource.String(),
		ExpiresInMinutes: mins,
	}
}

// =============================================================================

// NewDashboard defines the data needed to create a dashboard.
type NewDashboard struct {
	WorkspaceID string `json:"workspaceId" validate:"required,uuid"`
	Name        string `json:"name" validate:"required,min=3,max=60"`
	Description string `json:"description" validate:"max=500"`
	IsPublic    bool   `json:"isPublic"`
}

// Decode implements the web.Decoder interface.
func (app *NewDashboard) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

// Validate checks the data in the model is considered clean.
func (app NewDashboard) Validate() error {
	if err := errs.Check(app); err != nil {
		return errs.New(errs.InvalidArgument, fmt.Errorf("validate: %w", err))
	}
	return nil
}

func toBusNewDashboard(app NewDashboard, ws workspacebus.Workspace) (dashboardbus.NewDashboard, error) {
	nme, err := name.Parse(app.Name)
	if err != nil {
		return dashboardbus.NewDashboard{}, fmt.Errorf("parsing name: %w", err)
	}

	nd := dashboardbus.NewDashboard{
		WorkspaceID:  ws.ID,
		CollectionID: ws.CollectionID,
		Name:         nme,
		Description:  app.Description,
		IsPublic:     app.IsPublic,
	}

	return nd, nil
}
