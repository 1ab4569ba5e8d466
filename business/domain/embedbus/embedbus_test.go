package embedbus_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hexalytics/portal/business/domain/dashboardbus"
	"github.com/hexalytics/portal/business/domain/embedbus"
	"github.com/hexalytics/portal/business/domain/workspacebus"
	"github.com/hexalytics/portal/business/sdk/sqldb"
	"github.com/hexalytics/portal/business/types/name"
	"github.com/hexalytics/portal/business/types/resource"
	"github.com/hexalytics/portal/foundation/logger"
)

// fakeSigner produces predictable URLs so tests can assert on the resource
// that was signed.
type fakeSigner struct{}

func (fakeSigner) DashboardURL(dashboardID int, params map[string]any) (string, time.Time, error) {
	return fmt.Sprintf("http://mb.local/embed/dashboard/%d", dashboardID), time.Now().Add(10 * time.Minute), nil
}

func (fakeSigner) CollectionURL(collectionID int) (string, time.Time, error) {
	return fmt.Sprintf("http://mb.local/embed/collection/%d", collectionID), time.Now().Add(10 * time.Minute), nil
}

// =============================================================================

type fakeWorkspaceStore struct {
	workspaces map[uuid.UUID]workspacebus.Workspace
	access     map[uuid.UUID]map[uuid.UUID]bool
}

func (s *fakeWorkspaceStore) NewWithTx(tx sqldb.CommitRollbacker) (workspacebus.Storer, error) {
	return s, nil
}

func (s *fakeWorkspaceStore) Create(ctx context.Context, ws workspacebus.Workspace) error {
	return nil
}

func (s *fakeWorkspaceStore) Update(ctx context.Context, ws workspacebus.Workspace) error {
	return nil
}

func (s *fakeWorkspaceStore) Delete(ctx context.Context, ws workspacebus.Workspace) error {
	return nil
}

func (s *fakeWorkspaceStore) QueryByID(ctx context.Context, workspaceID uuid.UUID) (workspacebus.Workspace, error) {
	ws, exists := s.workspaces[workspaceID]
	if !exists {
		return workspacebus.Workspace{}, workspacebus.ErrNotFound
	}
	return ws, nil
}

func (s *fakeWorkspaceStore) QueryByUser(ctx context.Context, userID uuid.UUID) ([]workspacebus.Workspace, error) {
	return nil, nil
}

func (s *fakeWorkspaceStore) QueryAll(ctx context.Context) ([]workspacebus.Workspace, error) {
	return nil, nil
}

func (s *fakeWorkspaceStore) CheckAccess(ctx context.Context, userID uuid.UUID, workspaceID uuid.UUID) error {
	if s.access[workspaceID][userID] {
		return nil
	}
	return workspacebus.ErrAccessDenied
}

func (s *fakeWorkspaceStore) AddMember(ctx context.Context, mbr workspacebus.Member) error {
	return nil
}

func (s *fakeWorkspaceStore) RemoveMember(ctx context.Context, workspaceID uuid.UUID, userID uuid.UUID) error {
	return nil
}

func (s *fakeWorkspaceStore) QueryMembers(ctx context.Context, workspaceID uuid.UUID) ([]workspacebus.Member, error) {
	return nil, nil
}

// =============================================================================

type fakeDashboardStore struct {
	dashboards map[uuid.UUID]dashboardbus.Dashboard
}

func (s *fakeDashboardStore) NewWithTx(tx sqldb.CommitRollbacker) (dashboardbus.Storer, error) {
	return s, nil
}

func (s *fakeDashboardStore) Create(ctx context.Context, dsh dashboardbus.Dashboard) error {
	return nil
}

func (s *fakeDashboardStore) Update(ctx context.Context, dsh dashboardbus.Dashboard) error {
	return nil
}

func (s *fakeDashboardStore) Delete(ctx context.Context, dsh dashboardbus.Dashboard) error {
	return nil
}

func (s *fakeDashboardStore) QueryByID(ctx context.Context, dashboardID uuid.UUID) (dashboardbus.Dashboard, error) {
	dsh, exists := s.dashboards[dashboardID]
	if !exists {
		return dashboardbus.Dashboard{}, dashboardbus.ErrNotFound
	}
	return dsh, nil
}

func (s *fakeDashboardStore) QueryByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]dashboardbus.Dashboard, error) {
	return nil, nil
}

func (s *fakeDashboardStore) QueryByUpstreamID(ctx context.Context, upstreamID int) (dashboardbus.Dashboard, error) {
	return dashboardbus.Dashboard{}, dashboardbus.ErrNotFound
}

type noopBuilder struct{}

func (noopBuilder) CreateDashboard(ctx context.Context, name string, collectionID int) (int, error) {
	return 0, nil
}

func (noopBuilder) ArchiveDashboard(ctx context.Context, dashboardID int) error {
	return nil
}

// =============================================================================

type testSeed struct {
	bus     *embedbus.Core
	owner   uuid.UUID
	outside uuid.UUID
	ws      workspacebus.Workspace
	private dashboardbus.Dashboard
	public  dashboardbus.Dashboard
}

func newTestSeed() testSeed {
	owner := uuid.New()
	outside := uuid.New()

	ws := workspacebus.Workspace{
		ID:           uuid.New(),
		OwnerID:      owner,
		Name:         name.MustParse("ACME Sales"),
		CollectionID: 11,
		GroupID:      22,
		Enabled:      true,
	}

	private := dashboardbus.Dashboard{
		ID:          uuid.New(),
		WorkspaceID: ws.ID,
		Name:        name.MustParse("Revenue"),
		UpstreamID:  33,
	}

	public := dashboardbus.Dashboard{
		ID:          uuid.New(),
		WorkspaceID: ws.ID,
		Name:        name.MustParse("Public KPIs"),
		UpstreamID:  44,
		IsPublic:    true,
	}

	wsStore := &fakeWorkspaceStore{
		workspaces: map[uuid.UUID]workspacebus.Workspace{ws.ID: ws},
		access:     map[uuid.UUID]map[uuid.UUID]bool{ws.ID: {owner: true}},
	}

	dshStore := &fakeDashboardStore{
		dashboards: map[uuid.UUID]dashboardbus.Dashboard{
			private.ID: private,
			public.ID:  public,
		},
	}

	log := logger.New(io.Discard, logger.LevelInfo, "TEST", nil)
	workspaceBus := workspacebus.NewCore(log, wsStore, nil)
	dashboardBus := dashboardbus.NewCore(log, dshStore, noopBuilder{})

	return testSeed{
		bus:     embedbus.NewCore(workspaceBus, dashboardBus, fakeSigner{}),
		owner:   owner,
		outside: outside,
		ws:      ws,
		private: private,
		public:  public,
	}
}

func TestWorkspaceURL(t *testing.T) {
	seed := newTestSeed()
	ctx := context.Background()

	eu, err := seed.bus.WorkspaceURL(ctx, seed.owner, seed.ws.ID)
	if err != nil {
		t.Fatalf("workspaceurl: %s", err)
	}

	if eu.URL != "http://mb.local/embed/collection/11" {
		t.Errorf("url: got %s", eu.URL)
	}

	if !eu.Resource.Equal(resource.Workspace) {
		t.Errorf("resource: got %s, want WORKSPACE", eu.Resource)
	}

	if !eu.ExpiresAt.After(time.Now()) {
		t.Error("expiry should be in the future")
	}
}

func TestWorkspaceURLDenied(t *testing.T) {
	seed := newTestSeed()
	ctx := context.Background()

	if _, err := seed.bus.WorkspaceURL(ctx, seed.outside, seed.ws.ID); !errors.Is(err, embedbus.ErrAccessDenied) {
		t.Errorf("outsider: got %v, want ErrAccessDenied", err)
	}

	if _, err := seed.bus.WorkspaceURL(ctx, seed.owner, uuid.New()); !errors.Is(err, embedbus.ErrNotFound) {
		t.Errorf("unknown workspace: got %v, want ErrNotFound", err)
	}
}

func TestDashboardURL(t *testing.T) {
	seed := newTestSeed()
	ctx := context.Background()

	eu, err := seed.bus.DashboardURL(ctx, seed.owner, seed.private.ID)
	if err != nil {
		t.Fatalf("dashboardurl: %s", err)
	}

	if eu.URL != "http://mb.local/embed/dashboard/33" {
		t.Errorf("url: got %s", eu.URL)
	}

	if !eu.Resource.Equal(resource.Dashboard) {
		t.Errorf("resource: got %s, want DASHBOARD", eu.Resource)
	}

	if _, err := seed.bus.DashboardURL(ctx, seed.outside, seed.private.ID); !errors.Is(err, embedbus.ErrAccessDenied) {
		t.Errorf("outsider on private dashboard: got %v, want ErrAccessDenied", err)
	}
}

func TestDashboardURLPublic(t *testing.T) {
	seed := newTestSeed()
	ctx := context.Background()

	// Public dashboards skip the workspace access check.
	eu, err := seed.bus.DashboardURL(ctx, seed.outside, seed.public.ID)
	if err != nil {
		t.Fatalf("public dashboard for outsider: %s", err)
	}

	if eu.URL != "http://mb.local/embed/dashboard/44" {
		t.Errorf("url: got %s", eu.URL)
	}
}
