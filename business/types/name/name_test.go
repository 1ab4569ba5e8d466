package name_test

import (
	"testing"

	"github.com/hexalytics/portal/business/types/name"
)

func TestParse(t *testing.T) {
	valid := []string{
		"Bill Kennedy",
		"ACME Sales",
		"O'Neill - West",
		"abc",
	}

	for _, value := range valid {
		n, err := name.Parse(value)
		if err != nil {
			t.Errorf("parsing %q: unexpected error: %s", value, err)
			continue
		}

		if n.String() != value {
			t.Errorf("parsing %q: got %q back", value, n.String())
		}
	}

	invalid := []string{
		"",
		"ab",
		"name_with_underscores",
		"<script>",
		"aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
	}

	for _, value := range invalid {
		if _, err := name.Parse(value); err == nil {
			t.Errorf("parsing %q: expected error, got none", value)
		}
	}
}

func TestParseNull(t *testing.T) {
	n, err := name.ParseNull("")
	if err != nil {
		t.Fatalf("parsing empty value: unexpected error: %s", err)
	}

	if n.Valid() {
		t.Error("empty value should not be valid")
	}

	n, err = name.ParseNull("ACME Sales")
	if err != nil {
		t.Fatalf("parsing value: unexpected error: %s", err)
	}

	if !n.Valid() {
		t.Error("value should be valid")
	}

	if n.String() != "ACME Sales" {
		t.Errorf("got %q back", n.String())
	}
}
