package registry

import (
	"testing"

	"github.com/nlstn/go-csdlgen/internal/edm"
)

func TestFindOrCreate(t *testing.T) {
	tests := []struct {
		name     string
		allow    []string
		ns       string
		override bool
		wantNil  bool
	}{
		{name: "no filter", ns: "microsoft.graph"},
		{name: "reserved namespace", ns: "odata", wantNil: true},
		{name: "reserved namespace any case", ns: "OData", wantNil: true},
		{name: "reserved namespace with override", ns: "odata", override: true, wantNil: true},
		{name: "allowed namespace", allow: []string{"microsoft.graph"}, ns: "microsoft.graph"},
		{name: "filtered namespace", allow: []string{"microsoft.graph"}, ns: "oneDrive", wantNil: true},
		{name: "filtered namespace with override", allow: []string{"microsoft.graph"}, ns: "oneDrive", override: true},
		{name: "empty allow list filters everything", allow: []string{}, ns: "microsoft.graph", wantNil: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := New(tt.allow, nil)
			model := edm.NewModel()
			schema := reg.FindOrCreate(model, tt.ns, tt.override)
			if tt.wantNil {
				if schema != nil {
					t.Fatalf("expected nil schema, got %q", schema.Namespace)
				}
				if len(model.Schemas) != 0 {
					t.Errorf("no schema should have been created")
				}
				return
			}
			if schema == nil {
				t.Fatal("expected schema, got nil")
			}
			if schema.Namespace != tt.ns {
				t.Errorf("namespace = %q, want %q", schema.Namespace, tt.ns)
			}
		})
	}
}

func TestFindOrCreateReturnsExisting(t *testing.T) {
	reg := New(nil, nil)
	model := edm.NewModel()

	first := reg.FindOrCreate(model, "microsoft.graph", false)
	second := reg.FindOrCreate(model, "microsoft.graph", false)
	if first != second {
		t.Error("expected the same schema instance")
	}
	if len(model.Schemas) != 1 {
		t.Errorf("expected 1 schema, got %d", len(model.Schemas))
	}
	if reg.FindOrCreate(model, "Microsoft.Graph", false) == first {
		t.Error("namespaces are case-sensitive")
	}
}

func TestApplyExclusions(t *testing.T) {
	reg := New(nil, []string{"internal.only"})
	model := edm.NewModel()
	reg.FindOrCreate(model, "microsoft.graph", false)
	reg.FindOrCreate(model, "internal.only", false)

	removed := reg.ApplyExclusions(model)
	if len(removed) != 1 || removed[0] != "internal.only" {
		t.Errorf("removed = %v", removed)
	}
	if model.Schema("internal.only") != nil {
		t.Error("excluded schema still present")
	}
	if model.Schema("microsoft.graph") == nil {
		t.Error("unrelated schema removed")
	}
}
