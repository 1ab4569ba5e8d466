package metabase_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hexalytics/portal/foundation/logger"
	"github.com/hexalytics/portal/foundation/metabase"
)

// fakeMetabase stands in for a Metabase instance. It checks that every
// admin call carries the session token obtained from the login endpoint.
type fakeMetabase struct {
	t *testing.T

	logins    int
	graphPuts []map[string]any
}

func (f *fakeMetabase) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/session", func(w http.ResponseWriter, r *http.Request) {
		var creds struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
			f.t.Errorf("decoding login: %s", err)
		}

		if creds.Username != "admin@example.com" || creds.Password != "metapass" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		f.logins++
		json.NewEncoder(w).Encode(map[string]string{"id": "session-abc"})
	})

	authed := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("X-Metabase-Session") != "session-abc" {
				f.t.Errorf("%s %s: missing session header", r.Method, r.URL.Path)
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			next(w, r)
		}
	}

	mux.HandleFunc("POST /api/collection", authed(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"id": 11, "name": "ACME Sales"})
	}))

	mux.HandleFunc("POST /api/permissions/group", authed(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"id": 22, "name": "workspace-group"})
	}))

	mux.HandleFunc("GET /api/collection/graph", authed(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"revision": 4,
			"groups": map[string]any{
				"1": map[string]string{"root": "none"},
			},
		})
	}))

	mux.HandleFunc("PUT /api/collection/graph", authed(func(w http.ResponseWriter, r *http.Request) {
		var graph map[string]any
		data, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(data, &graph); err != nil {
			f.t.Errorf("decoding graph: %s", err)
		}
		f.graphPuts = append(f.graphPuts, graph)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("{}"))
	}))

	mux.HandleFunc("POST /api/dashboard", authed(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"id": 33, "name": "Revenue"})
	}))

	mux.HandleFunc("PUT /api/dashboard/33", authed(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		if body["enable_embedding"] != true && body["archived"] != true {
			f.t.Errorf("unexpected dashboard update: %v", body)
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("{}"))
	}))

	mux.HandleFunc("GET /api/collection/11/items", authed(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"id": 33, "name": "Revenue", "model": "dashboard"},
				{"id": 99, "name": "Scratch", "model": "card"},
			},
		})
	}))

	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok"}`))
	})

	return mux
}

func newTestClient(t *testing.T) (*metabase.Client, *fakeMetabase) {
	t.Helper()

	fake := &fakeMetabase{t: t}
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)

	log := logger.New(io.Discard, logger.LevelInfo, "TEST", nil)

	client := metabase.New(metabase.Config{
		Log:           log,
		Host:          srv.URL,
		AdminEmail:    "admin@example.com",
		AdminPassword: "metapass",
		Timeout:       5 * time.Second,
	})

	return client, fake
}

func TestProvisioning(t *testing.T) {
	client, fake := newTestClient(t)
	ctx := context.Background()

	colID, err := client.CreateCollection(ctx, "ACME Sales", "sales workspace")
	if err != nil {
		t.Fatalf("create collection: %s", err)
	}
	if colID != 11 {
		t.Errorf("collection id: got %d, want 11", colID)
	}

	grpID, err := client.CreateGroup(ctx, "workspace-group")
	if err != nil {
		t.Fatalf("create group: %s", err)
	}
	if grpID != 22 {
		t.Errorf("group id: got %d, want 22", grpID)
	}

	if err := client.GrantCollectionAccess(ctx, grpID, colID); err != nil {
		t.Fatalf("grant access: %s", err)
	}

	if len(fake.graphPuts) != 1 {
		t.Fatalf("expected 1 graph update, got %d", len(fake.graphPuts))
	}

	graph := fake.graphPuts[0]

	// The revision from the GET must be sent back unchanged.
	if rev := graph["revision"].(float64); rev != 4 {
		t.Errorf("revision: got %v, want 4", rev)
	}

	groups := graph["groups"].(map[string]any)
	grant := groups["22"].(map[string]any)
	if grant["11"] != "write" {
		t.Errorf("group 22 grant on collection 11: got %v, want write", grant["11"])
	}

	// Existing grants in the graph must survive the update.
	if _, exists := groups["1"]; !exists {
		t.Error("existing group grants were dropped from the graph")
	}

	if fake.logins != 1 {
		t.Errorf("session should be cached across calls, got %d logins", fake.logins)
	}
}

func TestDashboards(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	dashID, err := client.CreateDashboard(ctx, "Revenue", 11)
	if err != nil {
		t.Fatalf("create dashboard: %s", err)
	}
	if dashID != 33 {
		t.Errorf("dashboard id: got %d, want 33", dashID)
	}

	if err := client.ArchiveDashboard(ctx, 33); err != nil {
		t.Fatalf("archive dashboard: %s", err)
	}

	items, err := client.CollectionItems(ctx, 11)
	if err != nil {
		t.Fatalf("collection items: %s", err)
	}

	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}

	if items[0].Model != "dashboard" || items[0].ID != 33 {
		t.Errorf("unexpected first item: %+v", items[0])
	}
}

func TestStatusCheck(t *testing.T) {
	client, _ := newTestClient(t)

	if err := client.StatusCheck(context.Background()); err != nil {
		t.Fatalf("statuscheck: %s", err)
	}
}
