package edm

import "testing"

func TestMergeRecordIsIdempotent(t *testing.T) {
	var annotations []*Annotation

	MergeRecord(&annotations, "Org.OData.Capabilities.V1.InsertRestrictions", "Insertable", true)
	MergeRecord(&annotations, "Org.OData.Capabilities.V1.InsertRestrictions", "Insertable", true)

	if len(annotations) != 1 {
		t.Fatalf("expected 1 annotation, got %d", len(annotations))
	}
	if len(annotations[0].Records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(annotations[0].Records))
	}
	if v := annotations[0].Records[0].PropertyValue.Value.Bool; v == nil || !*v {
		t.Errorf("expected Insertable=true, got %v", v)
	}
}

func TestMergeRecordUsesOrSemantics(t *testing.T) {
	tests := []struct {
		name   string
		values []bool
		want   bool
	}{
		{name: "true then false", values: []bool{true, false}, want: true},
		{name: "false then true", values: []bool{false, true}, want: true},
		{name: "false twice", values: []bool{false, false}, want: false},
		{name: "single false", values: []bool{false}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var annotations []*Annotation
			for _, v := range tt.values {
				MergeRecord(&annotations, "Org.OData.Capabilities.V1.DeleteRestrictions", "Deletable", v)
			}
			record := annotations[0].Record("Deletable")
			if record == nil {
				t.Fatal("record not created")
			}
			if got := *record.PropertyValue.Value.Bool; got != tt.want {
				t.Errorf("Deletable = %v, want %v", got, tt.want)
			}
			if len(annotations[0].Records) != 1 {
				t.Errorf("expected exactly one record, got %d", len(annotations[0].Records))
			}
		})
	}
}

func TestMergeRecordKeepsSeparateProperties(t *testing.T) {
	var annotations []*Annotation
	MergeRecord(&annotations, "Org.OData.Capabilities.V1.UpdateRestrictions", "Updatable", false)
	MergeRecord(&annotations, "Org.OData.Capabilities.V1.UpdateRestrictions", "Upsertable", true)

	if len(annotations) != 1 {
		t.Fatalf("expected 1 annotation, got %d", len(annotations))
	}
	if len(annotations[0].Records) != 2 {
		t.Errorf("expected 2 records, got %d", len(annotations[0].Records))
	}
}

func TestMergeTerm(t *testing.T) {
	var annotations []*Annotation
	MergeTerm(&annotations, "Com.Microsoft.Graph.Queryable", true)
	MergeTerm(&annotations, "Com.Microsoft.Graph.Queryable", false)

	if len(annotations) != 1 {
		t.Fatalf("expected 1 annotation, got %d", len(annotations))
	}
	if v := annotations[0].Value.Bool; v == nil || !*v {
		t.Errorf("expected Queryable to stay true")
	}
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		raw  string
		kind string
	}{
		{raw: "true", kind: "bool"},
		{raw: "False", kind: "bool"},
		{raw: "42", kind: "int"},
		{raw: "-7", kind: "int"},
		{raw: "3.25", kind: "decimal"},
		{raw: "hello", kind: "string"},
		{raw: "1", kind: "int"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			v := ParseValue(tt.raw)
			var got string
			switch {
			case v.Bool != nil:
				got = "bool"
			case v.Int != nil:
				got = "int"
			case v.Decimal != nil:
				got = "decimal"
			case v.String != nil:
				got = "string"
			}
			if got != tt.kind {
				t.Errorf("ParseValue(%q) kind = %s, want %s", tt.raw, got, tt.kind)
			}
		})
	}

	if d := ParseValue("3.25").Decimal; d.String() != "3.25" {
		t.Errorf("decimal = %s, want 3.25", d.String())
	}
}
