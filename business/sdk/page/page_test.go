package page_test

import (
	"testing"

	"github.com/hexalytics/portal/business/sdk/page"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		page    string
		rows    string
		number  int
		rowsPer int
		fails   bool
	}{
		{name: "defaults", page: "", rows: "", number: 1, rowsPer: 10},
		{name: "explicit", page: "3", rows: "25", number: 3, rowsPer: 25},
		{name: "zero page", page: "0", rows: "10", fails: true},
		{name: "negative page", page: "-1", rows: "10", fails: true},
		{name: "zero rows", page: "1", rows: "0", fails: true},
		{name: "too many rows", page: "1", rows: "101", fails: true},
		{name: "not a number", page: "abc", rows: "10", fails: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := page.Parse(tt.page, tt.rows)

			if tt.fails {
				if err == nil {
					t.Fatal("expected error, got none")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %s", err)
			}

			if p.Number() != tt.number {
				t.Errorf("number: got %d, want %d", p.Number(), tt.number)
			}

			if p.RowsPerPage() != tt.rowsPer {
				t.Errorf("rows: got %d, want %d", p.RowsPerPage(), tt.rowsPer)
			}
		})
	}
}
