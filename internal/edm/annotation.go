package edm

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Annotation applies a vocabulary term to a model element. A term either
// carries a single Value or a list of Records.
type Annotation struct {
	Term    string
	Value   Value
	Records []*Record
}

// Record holds one property value of a structured annotation.
type Record struct {
	PropertyValue PropertyValue
}

// PropertyValue is a named value inside a Record.
type PropertyValue struct {
	Property string
	Value    Value
}

// Value is a constant annotation expression. At most one field is set.
type Value struct {
	Bool    *bool
	String  *string
	Int     *int64
	Decimal *decimal.Decimal
}

// IsZero reports whether no value is set.
func (v Value) IsZero() bool {
	return v.Bool == nil && v.String == nil && v.Int == nil && v.Decimal == nil
}

// BoolValue returns a boolean Value.
func BoolValue(b bool) Value {
	return Value{Bool: &b}
}

// StringValue returns a string Value.
func StringValue(s string) Value {
	return Value{String: &s}
}

// ParseValue infers the value kind from its textual form: booleans, integers
// and decimals are recognised, everything else is a string.
func ParseValue(raw string) Value {
	trimmed := strings.TrimSpace(raw)
	if b, err := strconv.ParseBool(trimmed); err == nil && (strings.EqualFold(trimmed, "true") || strings.EqualFold(trimmed, "false")) {
		return BoolValue(b)
	}
	if i, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return Value{Int: &i}
	}
	if d, err := decimal.NewFromString(trimmed); err == nil {
		return Value{Decimal: &d}
	}
	return StringValue(raw)
}

// FindAnnotation returns the annotation for term or nil.
func FindAnnotation(annotations []*Annotation, term string) *Annotation {
	for _, a := range annotations {
		if a.Term == term {
			return a
		}
	}
	return nil
}

// Record returns the record for the property or nil.
func (a *Annotation) Record(property string) *Record {
	for _, r := range a.Records {
		if r.PropertyValue.Property == property {
			return r
		}
	}
	return nil
}

// MergeRecord records a boolean capability inside a structured annotation.
// The annotation and record are created on first use; afterwards the stored
// value becomes existing OR value, so a capability once granted stays granted.
func MergeRecord(annotations *[]*Annotation, term, property string, value bool) *Record {
	annotation := FindAnnotation(*annotations, term)
	if annotation == nil {
		annotation = &Annotation{Term: term}
		*annotations = append(*annotations, annotation)
	}

	record := annotation.Record(property)
	if record == nil {
		record = &Record{PropertyValue: PropertyValue{Property: property, Value: BoolValue(value)}}
		annotation.Records = append(annotation.Records, record)
		return record
	}

	existing := record.PropertyValue.Value.Bool != nil && *record.PropertyValue.Value.Bool
	record.PropertyValue.Value = BoolValue(existing || value)
	return record
}

// MergeTerm records a boolean term annotation with the same OR semantics as MergeRecord.
func MergeTerm(annotations *[]*Annotation, term string, value bool) *Annotation {
	annotation := FindAnnotation(*annotations, term)
	if annotation == nil {
		annotation = &Annotation{Term: term, Value: BoolValue(value)}
		*annotations = append(*annotations, annotation)
		return annotation
	}
	existing := annotation.Value.Bool != nil && *annotation.Value.Bool
	annotation.Value = BoolValue(existing || value)
	return annotation
}

// SetTerm sets or replaces a term annotation value.
func SetTerm(annotations *[]*Annotation, term string, value Value) *Annotation {
	annotation := FindAnnotation(*annotations, term)
	if annotation == nil {
		annotation = &Annotation{Term: term}
		*annotations = append(*annotations, annotation)
	}
	annotation.Value = value
	return annotation
}
