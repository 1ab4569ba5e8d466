package password_test

import (
	"strings"
	"testing"

	"github.com/hexalytics/portal/business/types/password"
)

func TestParse(t *testing.T) {
	p, err := password.Parse("gophers1")
	if err != nil {
		t.Fatalf("parsing password: unexpected error: %s", err)
	}

	if string(p.Bytes()) != "gophers1" {
		t.Errorf("got %q from Bytes", p.Bytes())
	}

	if _, err := password.Parse("short"); err == nil {
		t.Error("expected error for a short password, got none")
	}
}

func TestMasking(t *testing.T) {
	p := password.MustParse("supersecret")

	if strings.Contains(p.String(), "supersecret") {
		t.Error("String leaked the raw password")
	}

	data, err := p.MarshalText()
	if err != nil {
		t.Fatalf("marshaltext: unexpected error: %s", err)
	}

	if strings.Contains(string(data), "supersecret") {
		t.Error("MarshalText leaked the raw password")
	}
}
