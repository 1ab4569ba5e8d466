package metabase_test

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hexalytics/portal/foundation/metabase"
)

const embedSecret = "0123456789abcdef0123456789abcdef"

func TestDashboardURL(t *testing.T) {
	emb := metabase.NewEmbedder("http://mb.local:3000/", embedSecret, 10*time.Minute)

	url, exp, err := emb.DashboardURL(42, map[string]any{"region": "west"})
	if err != nil {
		t.Fatalf("dashboardurl: %s", err)
	}

	if !strings.HasPrefix(url, "http://mb.local:3000/embed/dashboard/") {
		t.Fatalf("unexpected url prefix: %s", url)
	}

	if !strings.HasSuffix(url, "#bordered=true&titled=true") {
		t.Errorf("missing render fragment: %s", url)
	}

	if remain := time.Until(exp); remain <= 9*time.Minute || remain > 10*time.Minute {
		t.Errorf("expiry out of range: %s", remain)
	}

	claims := parseEmbedToken(t, url, "dashboard")

	resource := claims["resource"].(map[string]any)
	if got := resource["dashboard"].(float64); got != 42 {
		t.Errorf("resource dashboard: got %v, want 42", got)
	}

	params := claims["params"].(map[string]any)
	if got := params["region"]; got != "west" {
		t.Errorf("params region: got %v, want west", got)
	}
}

func TestCollectionURL(t *testing.T) {
	emb := metabase.NewEmbedder("http://mb.local:3000", embedSecret, time.Minute)

	url, _, err := emb.CollectionURL(7)
	if err != nil {
		t.Fatalf("collectionurl: %s", err)
	}

	claims := parseEmbedToken(t, url, "collection")

	resource := claims["resource"].(map[string]any)
	if got := resource["collection"].(float64); got != 7 {
		t.Errorf("resource collection: got %v, want 7", got)
	}

	// Metabase rejects tokens without an empty params object.
	if _, exists := claims["params"]; !exists {
		t.Error("params claim missing")
	}
}

// parseEmbedToken extracts the JWT from a signed embed URL and verifies it
// with the shared secret, the same check Metabase performs.
func parseEmbedToken(t *testing.T, url string, kind string) jwt.MapClaims {
	t.Helper()

	trimmed := strings.TrimSuffix(url, "#bordered=true&titled=true")
	idx := strings.LastIndex(trimmed, "/embed/"+kind+"/")
	if idx == -1 {
		t.Fatalf("url does not contain an embed path: %s", url)
	}

	tokenStr := trimmed[idx+len("/embed/"+kind+"/"):]

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (any, error) {
		return []byte(embedSecret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		t.Fatalf("parsing embed token: %s", err)
	}

	return claims
}
