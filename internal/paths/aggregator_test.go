package paths

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/nlstn/go-csdlgen/internal/docs"
)

func TestGenericPath(t *testing.T) {
	const base = "https://graph.microsoft.com/v1.0"

	tests := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{name: "plain", input: "/users", want: "/users", wantOK: true},
		{name: "key segment", input: "/users/{user-id}/manager", want: "/users/{var}/manager", wantOK: true},
		{name: "trailing slash", input: "/users/{id}/", want: "/users/{var}", wantOK: true},
		{name: "query string", input: "/users?$select=id", want: "/users", wantOK: true},
		{name: "fragment", input: "/me#section", want: "/me", wantOK: true},
		{name: "base url", input: base + "/me/drive", want: "/me/drive", wantOK: true},
		{name: "base url different case", input: "HTTPS://GRAPH.microsoft.com/v1.0/me", want: "/me", wantOK: true},
		{name: "verb prefix", input: "GET /drives/{drive-id}", want: "/drives/{var}", wantOK: true},
		{name: "root", input: "/", want: "/", wantOK: true},
		{name: "absolute foreign url", input: "https://example.com/users", wantOK: false},
		{name: "relative", input: "users", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := GenericPath(tt.input, base)
			if ok != tt.wantOK {
				t.Fatalf("GenericPath(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("GenericPath(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSegments(t *testing.T) {
	if got := Segments("/"); got != nil {
		t.Errorf("Segments(/) = %v, want nil", got)
	}
	if diff := cmp.Diff([]string{"users", Placeholder, "manager"}, Segments("/users/{var}/manager")); diff != "" {
		t.Errorf("Segments mismatch (-want +got):\n%s", diff)
	}
}

func sampleMethods() []docs.MethodDefinition {
	required := true
	return []docs.MethodDefinition{
		{Identifier: "list-users", RequestPath: "/users", HTTPMethod: "GET", ExpectedResponseType: "Collection(microsoft.graph.user)"},
		{Identifier: "get-user", RequestPath: "/users/{user-id}", HTTPMethod: "GET", ExpectedResponseType: "microsoft.graph.user"},
		{Identifier: "update-user", RequestPath: "/users/{id}", HTTPMethod: "PATCH",
			RequestBodyParameters: []docs.ParameterDefinition{{Name: "displayName", Type: "string"}}},
		{Identifier: "delete-user", RequestPath: "/users/{id}", HTTPMethod: "DELETE"},
		{Identifier: "copy-item", RequestPath: "/drives/{d}/items/{i}/microsoft.graph.copy", HTTPMethod: "POST",
			RequestBodyParameters: []docs.ParameterDefinition{{Name: "name", Type: "string", Required: &required}},
			QueryParameters:       []docs.ParameterDefinition{{Name: "conflict", Type: "string"}}},
		{Identifier: "bad-request", RequestPath: "/users/{id}", HTTPMethod: "PUT", ExpectError: true},
		{Identifier: "external", RequestPath: "https://login.example.com/token", HTTPMethod: "POST"},
	}
}

func TestAggregate(t *testing.T) {
	idx := Aggregate(sampleMethods(), "", nil)

	want := []string{"/users", "/users/{var}", "/drives/{var}/items/{var}/microsoft.graph.copy"}
	if diff := cmp.Diff(want, idx.Paths()); diff != "" {
		t.Fatalf("Paths mismatch (-want +got):\n%s", diff)
	}
	if idx.Len() != 3 {
		t.Errorf("Len = %d, want 3", idx.Len())
	}

	users, ok := idx.Get("/users/{var}")
	if !ok {
		t.Fatal("missing /users/{var}")
	}
	if !users.GetAllowed || !users.PatchAllowed || !users.DeleteAllowed {
		t.Errorf("unexpected verb flags: %v", users.AllowedVerbs())
	}
	if users.PutAllowed {
		t.Error("PUT came from a method expected to error and must be excluded")
	}
	if !users.UpdateAllowed() {
		t.Error("PATCH should count as update")
	}
	if !users.AllMethodsIdempotent {
		t.Error("GET, PATCH and DELETE are idempotent")
	}
	if users.ResponseType != "microsoft.graph.user" {
		t.Errorf("ResponseType = %q", users.ResponseType)
	}
	if len(users.Methods) != 3 {
		t.Errorf("expected 3 methods, got %d", len(users.Methods))
	}

	copyPath, _ := idx.Get("/drives/{var}/items/{var}/microsoft.graph.copy")
	if copyPath.AllMethodsIdempotent {
		t.Error("POST is not idempotent")
	}
	if len(copyPath.RequestBodyParameters) != 1 || len(copyPath.QueryParameters) != 1 {
		t.Errorf("parameters not carried: body=%d query=%d",
			len(copyPath.RequestBodyParameters), len(copyPath.QueryParameters))
	}
}

func TestAggregateUnionsParametersByName(t *testing.T) {
	methods := []docs.MethodDefinition{
		{RequestPath: "/me", HTTPMethod: "PATCH", RequestBodyParameters: []docs.ParameterDefinition{{Name: "a", Type: "string"}}},
		{RequestPath: "/me", HTTPMethod: "PATCH", RequestBodyParameters: []docs.ParameterDefinition{
			{Name: "a", Type: "int32"},
			{Name: "b", Type: "string"},
		}},
	}
	idx := Aggregate(methods, "", nil)
	mc, _ := idx.Get("/me")

	want := []docs.ParameterDefinition{{Name: "a", Type: "string"}, {Name: "b", Type: "string"}}
	if diff := cmp.Diff(want, mc.RequestBodyParameters); diff != "" {
		t.Errorf("parameters mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregateIsDeterministic(t *testing.T) {
	a := Aggregate(sampleMethods(), "", nil)
	b := Aggregate(sampleMethods(), "", nil)

	if diff := cmp.Diff(a.Paths(), b.Paths()); diff != "" {
		t.Errorf("paths differ:\n%s", diff)
	}
	for _, p := range a.Paths() {
		ma, _ := a.Get(p)
		mb, _ := b.Get(p)
		if diff := cmp.Diff(ma, mb); diff != "" {
			t.Errorf("collection %s differs:\n%s", p, diff)
		}
	}
	if a.Fingerprint() != b.Fingerprint() {
		t.Error("fingerprints differ for equal input")
	}

	c := Aggregate(sampleMethods()[:2], "", nil)
	if c.Fingerprint() == a.Fingerprint() {
		t.Error("fingerprint should change with content")
	}
}

func TestSortedPaths(t *testing.T) {
	idx := Aggregate(sampleMethods(), "", nil)
	want := []string{"/drives/{var}/items/{var}/microsoft.graph.copy", "/users", "/users/{var}"}
	if diff := cmp.Diff(want, idx.SortedPaths()); diff != "" {
		t.Errorf("SortedPaths mismatch (-want +got):\n%s", diff)
	}
	if idx.Paths()[0] != "/users" {
		t.Error("SortedPaths must not reorder discovery order")
	}
}
