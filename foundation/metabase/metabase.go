// Package metabase provides a client for the Metabase admin API. The portal
// uses it to provision per-workspace permission groups and collections and
// to manage the dashboards that live inside them.
package metabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hexalytics/portal/foundation/logger"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// ErrUnavailable is returned when Metabase cannot be reached or rejects an
// admin API call. Callers treat this as an upstream failure.
var ErrUnavailable = errors.New("metabase unavailable")

// sessionTTL is how long an admin session token is reused before a fresh
// login. Metabase sessions last 14 days; we refresh well before that.
const sessionTTL = 24 * time.Hour

// Config represents the mandatory settings to construct a client.
type Config struct {
	Log           *logger.Logger
	Host          string
	AdminEmail    string
	AdminPassword string
	Timeout       time.Duration
}

// Client manages authenticated access to the Metabase admin API.
type Client struct {
	log           *logger.Logger
	host          string
	adminEmail    string
	adminPassword string
	http          *http.Client

	mu           sync.Mutex
	sessionToken string
	sessionExp   time.Time
}

// New constructs a client for use against a single Metabase instance.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		log:           cfg.Log,
		host:          strings.TrimRight(cfg.Host, "/"),
		adminEmail:    cfg.AdminEmail,
		adminPassword: cfg.AdminPassword,
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// Host returns the configured Metabase base URL.
func (c *Client) Host() string {
	return c.host
}

// =============================================================================
// Collections

// Collection represents a Metabase collection.
type Collection struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// CreateCollection creates a collection that will hold a workspace's content.
func (c *Client) CreateCollection(ctx context.Context, name string, description string) (int, error) {
	body := map[string]any{
		"name":        name,
		"description": description,
		"color":       "#509EE3",
	}

	var col Collection
	if err := c.do(ctx, http.MethodPost, "collection", body, &col); err != nil {
		return 0, fmt.Errorf("create collection: %w", err)
	}

	c.log.Info(ctx, "metabase", "status", "collection created", "collection_id", col.ID)

	return col.ID, nil
}

// RenameCollection updates the name and description of a collection.
func (c *Client) RenameCollection(ctx context.Context, collectionID int, name string, description string) error {
	body := map[string]any{
		"name":        name,
		"description": description,
	}

	if err := c.do(ctx, http.MethodPut, "collection/"+strconv.Itoa(collectionID), body, nil); err != nil {
		return fmt.Errorf("rename collection[%d]: %w", collectionID, err)
	}

	return nil
}

// ArchiveCollection archives a collection. Metabase does not hard-delete
// collections; archiving removes them from view and from embedding.
func (c *Client) ArchiveCollection(ctx context.Context, collectionID int) error {
	body := map[string]any{
		"archived": true,
	}

	if err := c.do(ctx, http.MethodPut, "collection/"+strconv.Itoa(collectionID), body, nil); err != nil {
		return fmt.Errorf("archive collection[%d]: %w", collectionID, err)
	}

	return nil
}

// CollectionItem represents an entry inside a collection.
type CollectionItem struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Model string `json:"model"`
}

// CollectionItems lists the items stored in a collection. Dashboards are the
// entries whose Model is "dashboard".
func (c *Client) CollectionItems(ctx context.Context, collectionID int) ([]CollectionItem, error) {
	var resp struct {
		Data []CollectionItem `json:"data"`
	}

	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("collection/%d/items", collectionID), nil, &resp); err != nil {
		return nil, fmt.Errorf("collection items[%d]: %w", collectionID, err)
	}

	return resp.Data, nil
}

// =============================================================================
// Permission groups

// Group represents a Metabase permission group.
type Group struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// CreateGroup creates a permission group for a workspace.
func (c *Client) CreateGroup(ctx context.Context, name string) (int, error) {
	body := map[string]any{
		"name": name,
	}

	var grp Group
	if err := c.do(ctx, http.MethodPost, "permissions/group", body, &grp); err != nil {
		return 0, fmt.Errorf("create group: %w", err)
	}

	c.log.Info(ctx, "metabase", "status", "group created", "group_id", grp.ID)

	return grp.ID, nil
}

// DeleteGroup removes a permission group.
func (c *Client) DeleteGroup(ctx context.Context, groupID int) error {
	if err := c.do(ctx, http.MethodDelete, "permissions/group/"+strconv.Itoa(groupID), nil, nil); err != nil {
		return fmt.Errorf("delete group[%d]: %w", groupID, err)
	}

	return nil
}

// GrantCollectionAccess gives a group write access to a collection by
// updating the collection permissions graph. The graph carries a revision
// number that must be sent back unchanged or Metabase rejects the update.
func (c *Client) GrantCollectionAccess(ctx context.Context, groupID int, collectionID int) error {
	var graph struct {
		Revision int                          `json:"revision"`
		Groups   map[string]map[string]string `json:"groups"`
	}

	if err := c.do(ctx, http.MethodGet, "collection/graph", nil, &graph); err != nil {
		return fmt.Errorf("fetch permissions graph: %w", err)
	}

	if graph.Groups == nil {
		graph.Groups = make(map[string]map[string]string)
	}

	gid := strconv.Itoa(groupID)
	if graph.Groups[gid] == nil {
		graph.Groups[gid] = make(map[string]string)
	}
	graph.Groups[gid][strconv.Itoa(collectionID)] = "write"

	if err := c.do(ctx, http.MethodPut, "collection/graph", graph, nil); err != nil {
		return fmt.Errorf("update permissions graph: %w", err)
	}

	return nil
}

// =============================================================================
// Dashboards

// Dashboard represents a Metabase dashboard.
type Dashboard struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// CreateDashboard creates a dashboard inside the specified collection and
// marks it embeddable so signed embed tokens are accepted for it.
func (c *Client) CreateDashboard(ctx context.Context, name string, collectionID int) (int, error) {
	body := map[string]any{
		"name":          name,
		"collection_id": collectionID,
	}

	var dash Dashboard
	if err := c.do(ctx, http.MethodPost, "dashboard", body, &dash); err != nil {
		return 0, fmt.Errorf("create dashboard: %w", err)
	}

	enable := map[string]any{
		"enable_embedding": true,
	}
	if err := c.do(ctx, http.MethodPut, "dashboard/"+strconv.Itoa(dash.ID), enable, nil); err != nil {
		return 0, fmt.Errorf("enable embedding[%d]: %w", dash.ID, err)
	}

	c.log.Info(ctx, "metabase", "status", "dashboard created", "dashboard_id", dash.ID)

	return dash.ID, nil
}

// ArchiveDashboard archives a dashboard. Used as the compensating action
// when the local insert fails after the upstream create succeeded.
func (c *Client) ArchiveDashboard(ctx context.Context, dashboardID int) error {
	body := map[string]any{
		"archived": true,
	}

	if err := c.do(ctx, http.MethodPut, "dashboard/"+strconv.Itoa(dashboardID), body, nil); err != nil {
		return fmt.Errorf("archive dashboard[%d]: %w", dashboardID, err)
	}

	return nil
}

// =============================================================================
// Health

// StatusCheck returns nil when the Metabase instance reports healthy.
func (c *Client) StatusCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.host+"/api/health", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: health status %d", ErrUnavailable, resp.StatusCode)
	}

	return nil
}

// WaitForReady blocks until Metabase reports healthy or the context expires.
// This gates startup so the service never begins taking traffic against a
// BI instance that is still booting.
func (c *Client) WaitForReady(ctx context.Context, interval time.Duration) error {
	for attempt := 1; ; attempt++ {
		if err := c.StatusCheck(ctx); err == nil {
			return nil
		}

		c.log.Info(ctx, "metabase", "status", "waiting for readiness", "attempt", attempt)

		select {
		case <-time.After(interval):
		case <-ctx.Done():
			return fmt.Errorf("%w: %s", ErrUnavailable, ctx.Err())
		}
	}
}

// =============================================================================

// session returns a valid admin session token, performing a login against
// /api/session when the cached token is missing or stale.
func (c *Client) session(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sessionToken != "" && time.Now().Before(c.sessionExp) {
		return c.sessionToken, nil
	}

	body := map[string]any{
		"username": c.adminEmail,
		"password": c.adminPassword,
	}

	data, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal login: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+"/api/session", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: session login status %d", ErrUnavailable, resp.StatusCode)
	}

	var session struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return "", fmt.Errorf("decode session: %w", err)
	}

	c.sessionToken = session.ID
	c.sessionExp = time.Now().Add(sessionTTL)

	return c.sessionToken, nil
}

// do executes an authenticated request against the Metabase API and decodes
// the response into out when out is not nil.
func (c *Client) do(ctx context.Context, method string, endpoint string, body any, out any) error {
	token, err := c.session(ctx)
	if err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	url := c.host + "/api/" + strings.TrimLeft(endpoint, "/")

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-Metabase-Session", token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusAccepted, http.StatusNoContent:
	default:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("%w: %s %s status %d: %s", ErrUnavailable, method, endpoint, resp.StatusCode, string(msg))
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}
