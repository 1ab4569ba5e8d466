package role_test

import (
	"testing"

	"github.com/hexalytics/portal/business/types/role"
)

func TestParse(t *testing.T) {
	r, err := role.Parse("ADMIN")
	if err != nil {
		t.Fatalf("parsing ADMIN: unexpected error: %s", err)
	}

	if !r.Equal(role.Admin) {
		t.Errorf("got %q, want ADMIN", r)
	}

	if _, err := role.Parse("SUPERUSER"); err == nil {
		t.Error("expected error for unknown role, got none")
	}

	if _, err := role.Parse("admin"); err == nil {
		t.Error("roles are case sensitive, expected error for lowercase")
	}
}
