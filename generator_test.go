package csdlgen_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	csdlgen "github.com/nlstn/go-csdlgen"
)

const graphBaseURL = "https://graph.microsoft.com/v1.0"

func loadGraph(t *testing.T) *csdlgen.DocSet {
	t.Helper()
	set, err := csdlgen.LoadDocSet("testdata/graph.yaml")
	if err != nil {
		t.Fatalf("LoadDocSet() error: %v", err)
	}
	return set
}

func generate(t *testing.T, cfg csdlgen.GeneratorConfig, set *csdlgen.DocSet) *csdlgen.Result {
	t.Helper()
	gen, err := csdlgen.NewGenerator(cfg)
	if err != nil {
		t.Fatalf("NewGenerator() error: %v", err)
	}
	result, err := gen.Generate(context.Background(), set)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	return result
}

func TestGenerate_GraphFixture(t *testing.T) {
	result := generate(t, csdlgen.GeneratorConfig{
		BaseURL:            graphBaseURL,
		ExcludedNamespaces: []string{"microsoft.graph.internal"},
	}, loadGraph(t))

	if result.RunID == "" {
		t.Error("RunID is empty")
	}
	if len(result.ExcludedNamespaces) != 1 || result.ExcludedNamespaces[0] != "microsoft.graph.internal" {
		t.Errorf("ExcludedNamespaces = %v", result.ExcludedNamespaces)
	}
	if result.Model.Schema("microsoft.graph.internal") != nil {
		t.Error("Excluded schema still present")
	}

	c := result.Model.Container()
	if c == nil {
		t.Fatal("Model has no entity container")
	}
	if c.Name != "microsoft.graph" {
		t.Errorf("Container name = %v, want microsoft.graph", c.Name)
	}
	if es := c.EntitySet("users"); es == nil || es.EntityType != "microsoft.graph.user" {
		t.Errorf("Entity set users = %+v", es)
	}
	if s := c.Singleton("me"); s == nil || s.Type != "microsoft.graph.user" {
		t.Errorf("Singleton me = %+v", s)
	}
	if c.Singleton("users") != nil {
		t.Error("users must not be a singleton")
	}

	report := result.Report
	if len(report.Outcomes) != 7 {
		t.Fatalf("len(Outcomes) = %d, want 7", len(report.Outcomes))
	}
	if report.Failed != 1 {
		t.Errorf("Failed = %d, want 1", report.Failed)
	}
	failures := report.Failures()
	if len(failures) != 1 || failures[0].Path != "/users/{var}/mailboxSettings" {
		t.Errorf("Failures() = %+v", failures)
	}

	user := result.Model.LookupEntityType("microsoft.graph.user")
	if user == nil {
		t.Fatal("user entity type missing")
	}
	messages := user.NavigationProperty("messages")
	if messages == nil {
		t.Fatal("messages navigation property missing")
	}
	if len(messages.Annotations) == 0 {
		t.Error("messages should carry insert restrictions")
	}

	schema := result.Model.Schema("microsoft.graph")
	if len(schema.Actions) != 1 {
		t.Fatalf("len(Actions) = %d, want 1", len(schema.Actions))
	}
	action := schema.Actions[0]
	if action.Name != "changePassword" || action.BindingType() != "microsoft.graph.user" {
		t.Errorf("Action = %s bound to %s", action.Name, action.BindingType())
	}
	if len(action.Parameters) != 3 {
		t.Errorf("len(Parameters) = %d, want 3", len(action.Parameters))
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	set := loadGraph(t)
	cfg := csdlgen.GeneratorConfig{BaseURL: graphBaseURL}

	first := generate(t, cfg, set)
	second := generate(t, cfg, set)

	if first.RunID == second.RunID {
		t.Error("RunID should differ between runs")
	}
	if first.Fingerprint != second.Fingerprint || first.InputFingerprint != second.InputFingerprint {
		t.Error("Fingerprints should be stable for the same input")
	}

	a, err := csdlgen.ModelFingerprint(first.Model)
	if err != nil {
		t.Fatalf("ModelFingerprint() error: %v", err)
	}
	b, err := csdlgen.ModelFingerprint(second.Model)
	if err != nil {
		t.Fatalf("ModelFingerprint() error: %v", err)
	}
	if a != b {
		t.Errorf("Model fingerprints differ: %s != %s", a, b)
	}
}

func TestGenerate_NamespaceFilter(t *testing.T) {
	result := generate(t, csdlgen.GeneratorConfig{
		BaseURL:    graphBaseURL,
		Namespaces: []string{"microsoft.graph"},
	}, loadGraph(t))

	if result.Model.Schema("microsoft.graph.internal") != nil {
		t.Error("Namespace outside the allow list was materialized")
	}
}

func TestGenerate_FlattenActions(t *testing.T) {
	result := generate(t, csdlgen.GeneratorConfig{
		BaseURL:                   graphBaseURL,
		FlattenActionsToNamespace: "microsoft.graph.actions",
	}, loadGraph(t))

	schema := result.Model.Schema("microsoft.graph.actions")
	if schema == nil {
		t.Fatal("Flatten namespace schema missing")
	}
	if len(schema.Actions) != 1 || schema.Actions[0].Name != "microsoft.graph.changePassword" {
		t.Errorf("Actions = %+v", schema.Actions)
	}
}

func TestGenerate_RootOperationsOnly(t *testing.T) {
	set := &csdlgen.DocSet{
		Resources: []csdlgen.ResourceDefinition{{Name: "microsoft.graph.user", KeyProperty: "id",
			Parameters: []csdlgen.ParameterDefinition{{Name: "id", Type: "string"}}}},
		Methods: []csdlgen.MethodDefinition{{RequestPath: "/microsoft.graph.getStatus", HTTPMethod: "GET"}},
	}

	result := generate(t, csdlgen.GeneratorConfig{}, set)

	c := result.Model.Container()
	if c == nil {
		t.Fatal("Model has no entity container")
	}
	if c.Name != "microsoft.graph" || len(c.EntitySets) != 0 || len(c.Singletons) != 0 {
		t.Errorf("Container = %+v, want empty microsoft.graph container", c)
	}
	if result.Model.LookupEntityType("microsoft.graph.user") == nil {
		t.Error("user entity type missing")
	}
	schema := result.Model.Schema("microsoft.graph")
	if len(schema.Functions) != 1 || schema.Functions[0].Name != "getStatus" {
		t.Errorf("Functions = %+v", schema.Functions)
	}
	if result.Report.Failed != 0 {
		t.Errorf("Failures() = %+v", result.Report.Failures())
	}
}

func TestGenerate_NoSchema(t *testing.T) {
	set := &csdlgen.DocSet{
		Methods: []csdlgen.MethodDefinition{{RequestPath: "/users/{id}", HTTPMethod: "GET"}},
	}

	gen, err := csdlgen.NewGenerator(csdlgen.GeneratorConfig{})
	if err != nil {
		t.Fatalf("NewGenerator() error: %v", err)
	}
	_, err = gen.Generate(context.Background(), set)
	if !errors.Is(err, csdlgen.ErrNoSchema) {
		t.Errorf("Generate() error = %v, want ErrNoSchema", err)
	}
}

func TestGenerate_ComplexTypePromotion(t *testing.T) {
	set := &csdlgen.DocSet{
		Resources: []csdlgen.ResourceDefinition{
			{Name: "contoso.widget"},
			{Name: "contoso.widget", KeyProperty: "id", Parameters: []csdlgen.ParameterDefinition{{Name: "id", Type: "string"}}},
		},
	}

	gen, err := csdlgen.NewGenerator(csdlgen.GeneratorConfig{})
	if err != nil {
		t.Fatalf("NewGenerator() error: %v", err)
	}
	_, err = gen.Generate(context.Background(), set)
	if !errors.Is(err, csdlgen.ErrComplexTypePromotion) {
		t.Errorf("Generate() error = %v, want ErrComplexTypePromotion", err)
	}
}

func TestNewGenerator_InvalidConflictPolicy(t *testing.T) {
	if _, err := csdlgen.NewGenerator(csdlgen.GeneratorConfig{ConflictPolicy: "merge"}); err == nil {
		t.Error("NewGenerator() should reject unknown conflict policies")
	}
}

func TestGenerate_Store(t *testing.T) {
	st, err := csdlgen.OpenStore(":memory:", nil)
	if err != nil {
		t.Fatalf("OpenStore() error: %v", err)
	}
	defer st.Close()

	gen, err := csdlgen.NewGenerator(csdlgen.GeneratorConfig{BaseURL: graphBaseURL})
	if err != nil {
		t.Fatalf("NewGenerator() error: %v", err)
	}
	gen.SetStore(st)

	set := loadGraph(t)
	first, err := gen.Generate(context.Background(), set)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if first.PreviousRunID != "" {
		t.Errorf("PreviousRunID = %v, want empty for the first run", first.PreviousRunID)
	}

	second, err := gen.Generate(context.Background(), set)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if second.PreviousRunID != first.RunID {
		t.Errorf("PreviousRunID = %v, want %v", second.PreviousRunID, first.RunID)
	}

	run, err := st.GetRun(context.Background(), first.RunID)
	if err != nil {
		t.Fatalf("GetRun() error: %v", err)
	}
	if run.Failed != 1 || run.EntitySets != 1 || run.Singletons != 1 || run.Operations != 1 {
		t.Errorf("Stored run = %+v", run)
	}
	if len(run.Outcomes) != len(first.Report.Outcomes) {
		t.Errorf("Stored %d outcomes, want %d", len(run.Outcomes), len(first.Report.Outcomes))
	}
	if !strings.Contains(run.CSDL, `<EntitySet Name="users"`) {
		t.Error("Stored CSDL does not contain the users entity set")
	}
}

func TestWriteCSDL(t *testing.T) {
	result := generate(t, csdlgen.GeneratorConfig{BaseURL: graphBaseURL}, loadGraph(t))

	var buf bytes.Buffer
	if err := csdlgen.WriteCSDL(&buf, result.Model, csdlgen.DefaultCSDLOptions()); err != nil {
		t.Fatalf("WriteCSDL() error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`<?xml version="1.0" encoding="UTF-8"?>`,
		`<edmx:Edmx Version="4.0"`,
		`<Action Name="changePassword" IsBound="true">`,
		`<Singleton Name="me" Type="microsoft.graph.user"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("CSDL does not contain %q", want)
		}
	}
}

func TestRunIDFromContext(t *testing.T) {
	if _, ok := csdlgen.RunIDFromContext(context.Background()); ok {
		t.Error("RunIDFromContext() ok = true for empty context")
	}
}

func TestNewMetadataServer(t *testing.T) {
	result := generate(t, csdlgen.GeneratorConfig{BaseURL: graphBaseURL}, loadGraph(t))

	handler, err := csdlgen.NewMetadataServer(result, nil)
	if err != nil {
		t.Fatalf("NewMetadataServer() error: %v", err)
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/$metadata", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Status = %v, want %v", w.Code, http.StatusOK)
	}
	if etag := w.Header().Get("ETag"); etag != `W/"`+result.RunID+`"` {
		t.Errorf("ETag = %v", etag)
	}

	if _, err := csdlgen.NewMetadataServer(nil, nil); err == nil {
		t.Error("NewMetadataServer(nil) should fail")
	}
}
