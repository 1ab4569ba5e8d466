package dashboardbus_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/hexalytics/portal/business/domain/dashboardbus"
	"github.com/hexalytics/portal/business/sdk/sqldb"
	"github.com/hexalytics/portal/business/types/name"
	"github.com/hexalytics/portal/foundation/logger"
)

// fakeBuilder records upstream dashboard calls.
type fakeBuilder struct {
	failCreate bool
	created    int
	archived   []int
}

func (b *fakeBuilder) CreateDashboard(ctx context.Context, name string, collectionID int) (int, error) {
	if b.failCreate {
		return 0, errors.New("upstream down")
	}
	b.created++
	return 300 + b.created, nil
}

func (b *fakeBuilder) ArchiveDashboard(ctx context.Context, dashboardID int) error {
	b.archived = append(b.archived, dashboardID)
	return nil
}

// =============================================================================

type fakeStore struct {
	failCreate bool
	dashboards map[uuid.UUID]dashboardbus.Dashboard
}

func newFakeStore() *fakeStore {
	return &fakeStore{dashboards: make(map[uuid.UUID]dashboardbus.Dashboard)}
}

func (s *fakeStore) NewWithTx(tx sqldb.CommitRollbacker) (dashboardbus.Storer, error) {
	return s, nil
}

func (s *fakeStore) Create(ctx context.Context, dsh dashboardbus.Dashboard) error {
	if s.failCreate {
		return errors.New("insert failed")
	}
	s.dashboards[dsh.ID] = dsh
	return nil
}

func (s *fakeStore) Update(ctx context.Context, dsh dashboardbus.Dashboard) error {
	s.dashboards[dsh.ID] = dsh
	return nil
}

func (s *fakeStore) Delete(ctx context.Context, dsh dashboardbus.Dashboard) error {
	delete(s.dashboards, dsh.ID)
	return nil
}

func (s *fakeStore) QueryByID(ctx context.Context, dashboardID uuid.UUID) (dashboardbus.Dashboard, error) {
	dsh, exists := s.dashboards[dashboardID]
	if !exists {
		return dashboardbus.Dashboard{}, dashboardbus.ErrNotFound
	}
	return dsh, nil
}

func (s *fakeStore) QueryByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]dashboardbus.Dashboard, error) {
	var dshs []dashboardbus.Dashboard
	for _, dsh := range s.dashboards {
		if dsh.WorkspaceID == workspaceID {
			dshs = append(dshs, dsh)
		}
	}
	return dshs, nil
}

func (s *fakeStore) QueryByUpstreamID(ctx context.Context, upstreamID int) (dashboardbus.Dashboard, error) {
	for _, dsh := range s.dashboards {
		if dsh.UpstreamID == upstreamID {
			return dsh, nil
		}
	}
	return dashboardbus.Dashboard{}, dashboardbus.ErrNotFound
}

// =============================================================================

func newTestCore(store *fakeStore, builder *fakeBuilder) *dashboardbus.Core {
	log := logger.New(io.Discard, logger.LevelInfo, "TEST", nil)
	return dashboardbus.NewCore(log, store, builder)
}

func TestCreate(t *testing.T) {
	store := newFakeStore()
	builder := &fakeBuilder{}
	bus := newTestCore(store, builder)

	nd := dashboardbus.NewDashboard{
		WorkspaceID:  uuid.New(),
		CollectionID: 11,
		Name:         name.MustParse("Revenue"),
	}

	dsh, err := bus.Create(context.Background(), nd)
	if err != nil {
		t.Fatalf("create: %s", err)
	}

	if dsh.UpstreamID != 301 {
		t.Errorf("upstream id: got %d, want 301", dsh.UpstreamID)
	}

	if _, exists := store.dashboards[dsh.ID]; !exists {
		t.Error("dashboard was not persisted")
	}
}

func TestCreateUpstreamFails(t *testing.T) {
	store := newFakeStore()
	builder := &fakeBuilder{failCreate: true}
	bus := newTestCore(store, builder)

	nd := dashboardbus.NewDashboard{
		WorkspaceID:  uuid.New(),
		CollectionID: 11,
		Name:         name.MustParse("Revenue"),
	}

	_, err := bus.Create(context.Background(), nd)
	if !errors.Is(err, dashboardbus.ErrProvision) {
		t.Fatalf("got %v, want ErrProvision", err)
	}

	if len(store.dashboards) != 0 {
		t.Error("no dashboard should have been persisted")
	}
}

func TestCreateInsertFails(t *testing.T) {
	store := newFakeStore()
	store.failCreate = true
	builder := &fakeBuilder{}
	bus := newTestCore(store, builder)

	nd := dashboardbus.NewDashboard{
		WorkspaceID:  uuid.New(),
		CollectionID: 11,
		Name:         name.MustParse("Revenue"),
	}

	if _, err := bus.Create(context.Background(), nd); err == nil {
		t.Fatal("expected error, got none")
	}

	// The upstream dashboard created before the failed insert must be
	// archived again.
	if len(builder.archived) != 1 || builder.archived[0] != 301 {
		t.Errorf("archived: got %v, want [301]", builder.archived)
	}
}

func TestRegister(t *testing.T) {
	store := newFakeStore()
	builder := &fakeBuilder{}
	bus := newTestCore(store, builder)
	ctx := context.Background()

	rd := dashboardbus.RegisterDashboard{
		WorkspaceID: uuid.New(),
		Name:        name.MustParse("Built Upstream"),
		UpstreamID:  777,
	}

	dsh, err := bus.Register(ctx, rd)
	if err != nil {
		t.Fatalf("register: %s", err)
	}

	// Register records an existing upstream dashboard, it never creates one.
	if builder.created != 0 {
		t.Errorf("upstream creates: got %d, want 0", builder.created)
	}

	got, err := bus.QueryByUpstreamID(ctx, 777)
	if err != nil {
		t.Fatalf("querybyupstreamid: %s", err)
	}

	if got.ID != dsh.ID {
		t.Errorf("got dashboard %s, want %s", got.ID, dsh.ID)
	}
}

func TestDelete(t *testing.T) {
	store := newFakeStore()
	builder := &fakeBuilder{}
	bus := newTestCore(store, builder)
	ctx := context.Background()

	dsh, err := bus.Create(ctx, dashboardbus.NewDashboard{
		WorkspaceID:  uuid.New(),
		CollectionID: 11,
		Name:         name.MustParse("Revenue"),
	})
	if err != nil {
		t.Fatalf("create: %s", err)
	}

	if err := bus.Delete(ctx, dsh); err != nil {
		t.Fatalf("delete: %s", err)
	}

	if _, err := bus.QueryByID(ctx, dsh.ID); !errors.Is(err, dashboardbus.ErrNotFound) {
		t.Errorf("deleted dashboard lookup: got %v, want ErrNotFound", err)
	}

	if len(builder.archived) != 1 || builder.archived[0] != dsh.UpstreamID {
		t.Errorf("archived: got %v, want [%d]", builder.archived, dsh.UpstreamID)
	}
}
