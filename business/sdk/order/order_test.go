package order_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/hexalytics/portal/business/sdk/order"
)

func TestParse(t *testing.T) {
	fieldMappings := map[string]string{
		"name":    "name",
		"created": "created_at",
	}

	defaultOrder := order.NewBy("name", order.ASC)

	tests := []struct {
		name    string
		orderBy string
		want    order.By
		fails   bool
	}{
		{name: "empty uses default", orderBy: "", want: defaultOrder},
		{name: "field only", orderBy: "created", want: order.NewBy("created_at", order.ASC)},
		{name: "field and direction", orderBy: "created,DESC", want: order.NewBy("created_at", order.DESC)},
		{name: "unknown field", orderBy: "password", fails: true},
		{name: "unknown direction", orderBy: "name,SIDEWAYS", fails: true},
		{name: "too many parts", orderBy: "name,ASC,extra", fails: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := order.Parse(fieldMappings, tt.orderBy, defaultOrder)

			if tt.fails {
				if err == nil {
					t.Fatal("expected error, got none")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %s", err)
			}

			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
