package workspacebus_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/hexalytics/portal/business/domain/workspacebus"
	"github.com/hexalytics/portal/business/sdk/sqldb"
	"github.com/hexalytics/portal/business/types/name"
	"github.com/hexalytics/portal/foundation/logger"
)

// fakeProvisioner records upstream calls so tests can assert on the
// provisioning and compensation sequence. Any method whose name appears in
// failOn returns an error.
type fakeProvisioner struct {
	failOn map[string]bool
	calls  []string

	collectionID int
	groupID      int
}

func (p *fakeProvisioner) call(method string) error {
	p.calls = append(p.calls, method)
	if p.failOn[method] {
		return errors.New(method + " failed")
	}
	return nil
}

func (p *fakeProvisioner) CreateCollection(ctx context.Context, name string, description string) (int, error) {
	if err := p.call("CreateCollection"); err != nil {
		return 0, err
	}
	p.collectionID++
	return 100 + p.collectionID, nil
}

func (p *fakeProvisioner) RenameCollection(ctx context.Context, collectionID int, name string, description string) error {
	return p.call("RenameCollection")
}

func (p *fakeProvisioner) ArchiveCollection(ctx context.Context, collectionID int) error {
	return p.call("ArchiveCollection")
}

func (p *fakeProvisioner) CreateGroup(ctx context.Context, name string) (int, error) {
	if err := p.call("CreateGroup"); err != nil {
		return 0, err
	}
	p.groupID++
	return 200 + p.groupID, nil
}

func (p *fakeProvisioner) DeleteGroup(ctx context.Context, groupID int) error {
	return p.call("DeleteGroup")
}

func (p *fakeProvisioner) GrantCollectionAccess(ctx context.Context, groupID int, collectionID int) error {
	return p.call("GrantCollectionAccess")
}

// =============================================================================

// fakeStore keeps workspaces and memberships in memory, honoring the
// enabled flag the way the real store does.
type fakeStore struct {
	failCreate bool
	workspaces map[uuid.UUID]workspacebus.Workspace
	members    map[uuid.UUID][]workspacebus.Member
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		workspaces: make(map[uuid.UUID]workspacebus.Workspace),
		members:    make(map[uuid.UUID][]workspacebus.Member),
	}
}

func (s *fakeStore) NewWithTx(tx sqldb.CommitRollbacker) (workspacebus.Storer, error) {
	return s, nil
}

func (s *fakeStore) Create(ctx context.Context, ws workspacebus.Workspace) error {
	if s.failCreate {
		return errors.New("insert failed")
	}
	s.workspaces[ws.ID] = ws
	return nil
}

func (s *fakeStore) Update(ctx context.Context, ws workspacebus.Workspace) error {
	s.workspaces[ws.ID] = ws
	return nil
}

func (s *fakeStore) Delete(ctx context.Context, ws workspacebus.Workspace) error {
	s.workspaces[ws.ID] = ws
	return nil
}

func (s *fakeStore) QueryByID(ctx context.Context, workspaceID uuid.UUID) (workspacebus.Workspace, error) {
	ws, exists := s.workspaces[workspaceID]
	if !exists || !ws.Enabled {
		return workspacebus.Workspace{}, workspacebus.ErrNotFound
	}
	return ws, nil
}

func (s *fakeStore) QueryByUser(ctx context.Context, userID uuid.UUID) ([]workspacebus.Workspace, error) {
	var wss []workspacebus.Workspace
	for _, ws := range s.workspaces {
		if !ws.Enabled {
			continue
		}
		if ws.OwnerID == userID {
			wss = append(wss, ws)
		}
	}
	return wss, nil
}

func (s *fakeStore) QueryAll(ctx context.Context) ([]workspacebus.Workspace, error) {
	var wss []workspacebus.Workspace
	for _, ws := range s.workspaces {
		if ws.Enabled {
			wss = append(wss, ws)
		}
	}
	return wss, nil
}

func (s *fakeStore) CheckAccess(ctx context.Context, userID uuid.UUID, workspaceID uuid.UUID) error {
	ws, exists := s.workspaces[workspaceID]
	if !exists || !ws.Enabled {
		return workspacebus.ErrAccessDenied
	}
	if ws.OwnerID == userID {
		return nil
	}
	for _, mbr := range s.members[workspaceID] {
		if mbr.UserID == userID {
			return nil
		}
	}
	return workspacebus.ErrAccessDenied
}

func (s *fakeStore) AddMember(ctx context.Context, mbr workspacebus.Member) error {
	s.members[mbr.WorkspaceID] = append(s.members[mbr.WorkspaceID], mbr)
	return nil
}

func (s *fakeStore) RemoveMember(ctx context.Context, workspaceID uuid.UUID, userID uuid.UUID) error {
	mbrs := s.members[workspaceID]
	for i, mbr := range mbrs {
		if mbr.UserID == userID {
			s.members[workspaceID] = append(mbrs[:i], mbrs[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *fakeStore) QueryMembers(ctx context.Context, workspaceID uuid.UUID) ([]workspacebus.Member, error) {
	return s.members[workspaceID], nil
}

// =============================================================================

func newTestCore(store *fakeStore, prov *fakeProvisioner) *workspacebus.Core {
	log := logger.New(io.Discard, logger.LevelInfo, "TEST", nil)
	return workspacebus.NewCore(log, store, prov)
}

func TestCreate(t *testing.T) {
	store := newFakeStore()
	prov := &fakeProvisioner{}
	bus := newTestCore(store, prov)
	ctx := context.Background()

	nw := workspacebus.NewWorkspace{
		OwnerID:     uuid.New(),
		Name:        name.MustParse("ACME Sales"),
		Description: "sales reporting",
	}

	ws, err := bus.Create(ctx, nw)
	if err != nil {
		t.Fatalf("create: %s", err)
	}

	if ws.CollectionID != 101 {
		t.Errorf("collection id: got %d, want 101", ws.CollectionID)
	}

	if ws.GroupID != 201 {
		t.Errorf("group id: got %d, want 201", ws.GroupID)
	}

	if !ws.Enabled {
		t.Error("new workspaces should be enabled")
	}

	want := []string{"CreateCollection", "CreateGroup", "GrantCollectionAccess"}
	assertCalls(t, prov.calls, want)

	if _, exists := store.workspaces[ws.ID]; !exists {
		t.Error("workspace was not persisted")
	}
}

func TestCreateGroupFails(t *testing.T) {
	store := newFakeStore()
	prov := &fakeProvisioner{failOn: map[string]bool{"CreateGroup": true}}
	bus := newTestCore(store, prov)

	nw := workspacebus.NewWorkspace{
		OwnerID: uuid.New(),
		Name:    name.MustParse("ACME Sales"),
	}

	_, err := bus.Create(context.Background(), nw)
	if !errors.Is(err, workspacebus.ErrProvision) {
		t.Fatalf("got %v, want ErrProvision", err)
	}

	// The collection created before the failure must be removed again.
	want := []string{"CreateCollection", "CreateGroup", "ArchiveCollection"}
	assertCalls(t, prov.calls, want)

	if len(store.workspaces) != 0 {
		t.Error("no workspace should have been persisted")
	}
}

func TestCreateInsertFails(t *testing.T) {
	store := newFakeStore()
	store.failCreate = true
	prov := &fakeProvisioner{}
	bus := newTestCore(store, prov)

	nw := workspacebus.NewWorkspace{
		OwnerID: uuid.New(),
		Name:    name.MustParse("ACME Sales"),
	}

	if _, err := bus.Create(context.Background(), nw); err == nil {
		t.Fatal("expected error, got none")
	}

	// Both upstream resources must be removed when the insert fails.
	want := []string{"CreateCollection", "CreateGroup", "GrantCollectionAccess", "ArchiveCollection", "DeleteGroup"}
	assertCalls(t, prov.calls, want)
}

func TestUpdateRename(t *testing.T) {
	store := newFakeStore()
	prov := &fakeProvisioner{}
	bus := newTestCore(store, prov)
	ctx := context.Background()

	ws, err := bus.Create(ctx, workspacebus.NewWorkspace{
		OwnerID: uuid.New(),
		Name:    name.MustParse("ACME Sales"),
	})
	if err != nil {
		t.Fatalf("create: %s", err)
	}

	prov.calls = nil

	newName := name.MustParse("ACME Marketing")
	updated, err := bus.Update(ctx, ws, workspacebus.UpdateWorkspace{Name: &newName})
	if err != nil {
		t.Fatalf("update: %s", err)
	}

	if !updated.Name.Equal(newName) {
		t.Errorf("name: got %s, want %s", updated.Name, newName)
	}

	assertCalls(t, prov.calls, []string{"RenameCollection"})

	// An update that touches neither name nor description stays local.
	prov.calls = nil
	enabled := true
	if _, err := bus.Update(ctx, updated, workspacebus.UpdateWorkspace{Enabled: &enabled}); err != nil {
		t.Fatalf("update: %s", err)
	}

	assertCalls(t, prov.calls, nil)
}

func TestDelete(t *testing.T) {
	store := newFakeStore()
	prov := &fakeProvisioner{}
	bus := newTestCore(store, prov)
	ctx := context.Background()

	ws, err := bus.Create(ctx, workspacebus.NewWorkspace{
		OwnerID: uuid.New(),
		Name:    name.MustParse("ACME Sales"),
	})
	if err != nil {
		t.Fatalf("create: %s", err)
	}

	prov.calls = nil

	if err := bus.Delete(ctx, ws); err != nil {
		t.Fatalf("delete: %s", err)
	}

	assertCalls(t, prov.calls, []string{"ArchiveCollection", "DeleteGroup"})

	if _, err := bus.QueryByID(ctx, ws.ID); !errors.Is(err, workspacebus.ErrNotFound) {
		t.Errorf("deleted workspace lookup: got %v, want ErrNotFound", err)
	}
}

func TestDeleteUpstreamFailureIsBestEffort(t *testing.T) {
	store := newFakeStore()
	prov := &fakeProvisioner{failOn: map[string]bool{"ArchiveCollection": true, "DeleteGroup": true}}
	bus := newTestCore(store, prov)
	ctx := context.Background()

	ws, err := bus.Create(ctx, workspacebus.NewWorkspace{
		OwnerID: uuid.New(),
		Name:    name.MustParse("ACME Sales"),
	})
	if err != nil {
		t.Fatalf("create: %s", err)
	}

	if err := bus.Delete(ctx, ws); err != nil {
		t.Fatalf("delete should succeed despite upstream failures: %s", err)
	}

	if store.workspaces[ws.ID].Enabled {
		t.Error("workspace should be disabled")
	}
}

func assertCalls(t *testing.T, got []string, want []string) {
	t.Helper()

	if len(got) != len(want) {
		t.Fatalf("calls: got %v, want %v", got, want)
	}

	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("calls: got %v, want %v", got, want)
		}
	}
}
