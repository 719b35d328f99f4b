package csdl

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"

	"github.com/nlstn/go-csdlgen/internal/edm"
)

// Options control the XML formatting.
type Options struct {
	IncludeXMLDeclaration bool
	Indent                bool
}

// DefaultOptions writes the XML declaration and indents the document.
func DefaultOptions() Options {
	return Options{IncludeXMLDeclaration: true, Indent: true}
}

// Write renders model to w.
func Write(w io.Writer, model *edm.Model, opts Options) error {
	if opts.IncludeXMLDeclaration {
		if _, err := io.WriteString(w, xml.Header); err != nil {
			return err
		}
	}

	enc := xml.NewEncoder(w)
	if opts.Indent {
		enc.Indent("", "  ")
	}
	if err := enc.Encode(document(model)); err != nil {
		return fmt.Errorf("failed to encode CSDL: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}
	if opts.Indent {
		_, err := io.WriteString(w, "\n")
		return err
	}
	return nil
}

// Marshal renders model into a byte slice.
func Marshal(model *edm.Model, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, model, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func document(model *edm.Model) *edmxDocument {
	doc := &edmxDocument{
		Version: edmxVersion,
		Xmlns:   edmxNamespace,
	}
	for _, s := range model.Schemas {
		doc.DataServices.Schemas = append(doc.DataServices.Schemas, convertSchema(s))
	}
	return doc
}

func convertSchema(s *edm.Schema) schema {
	out := schema{Xmlns: edmNamespace, Namespace: s.Namespace}

	for _, t := range s.EntityTypes {
		et := entityType{
			Name:        t.Name,
			OpenType:    t.OpenType,
			Properties:  convertProperties(t.Properties),
			Annotations: convertAnnotations(t.Annotations),
		}
		if len(t.Key) > 0 {
			et.Key = &key{}
			for _, k := range t.Key {
				et.Key.PropertyRefs = append(et.Key.PropertyRefs, propertyRef{Name: k})
			}
		}
		for _, n := range t.NavigationProperties {
			et.NavigationProperties = append(et.NavigationProperties, navigationProperty{
				Name:           n.Name,
				Type:           n.Type,
				ContainsTarget: n.ContainsTarget,
				Annotations:    convertAnnotations(n.Annotations),
			})
		}
		out.EntityTypes = append(out.EntityTypes, et)
	}

	for _, t := range s.ComplexTypes {
		out.ComplexTypes = append(out.ComplexTypes, complexType{
			Name:        t.Name,
			OpenType:    t.OpenType,
			Properties:  convertProperties(t.Properties),
			Annotations: convertAnnotations(t.Annotations),
		})
	}

	for _, t := range s.Terms {
		out.Terms = append(out.Terms, term{
			Name:        t.Name,
			Type:        t.Type,
			AppliesTo:   t.AppliesTo,
			Annotations: convertAnnotations(t.Annotations),
		})
	}

	for _, op := range s.Actions {
		out.Actions = append(out.Actions, convertOperation(op))
	}
	for _, op := range s.Functions {
		out.Functions = append(out.Functions, convertOperation(op))
	}

	for _, c := range s.EntityContainers {
		ec := entityContainer{Name: c.Name, Annotations: convertAnnotations(c.Annotations)}
		for _, es := range c.EntitySets {
			ec.EntitySets = append(ec.EntitySets, entitySet{
				Name:        es.Name,
				EntityType:  es.EntityType,
				Annotations: convertAnnotations(es.Annotations),
			})
		}
		for _, sg := range c.Singletons {
			ec.Singletons = append(ec.Singletons, singleton{
				Name:        sg.Name,
				Type:        sg.Type,
				Annotations: convertAnnotations(sg.Annotations),
			})
		}
		out.EntityContainers = append(out.EntityContainers, ec)
	}
	return out
}

func convertProperties(props []*edm.Property) []property {
	var out []property
	for _, p := range props {
		out = append(out, property{
			Name:        p.Name,
			Type:        p.Type,
			Nullable:    p.Nullable,
			Annotations: convertAnnotations(p.Annotations),
		})
	}
	return out
}

func convertOperation(op *edm.Operation) operation {
	out := operation{Name: op.Name, IsBound: op.IsBound}
	for _, p := range op.Parameters {
		out.Parameters = append(out.Parameters, parameter{Name: p.Name, Type: p.Type, Nullable: p.Nullable})
	}
	if op.ReturnType != nil {
		out.ReturnType = &returnType{Type: op.ReturnType.Type, Nullable: op.ReturnType.Nullable}
	}
	return out
}

// convertAnnotations renders each annotation either as a constant expression
// or as a single Record holding one PropertyValue per model record.
func convertAnnotations(annotations []*edm.Annotation) []annotation {
	var out []annotation
	for _, a := range annotations {
		x := annotation{Term: a.Term}
		if len(a.Records) > 0 {
			x.Record = &record{}
			for _, r := range a.Records {
				pv := propertyValue{Property: r.PropertyValue.Property}
				pv.Bool, pv.String, pv.Int, pv.Decimal = valueAttrs(r.PropertyValue.Value)
				x.Record.PropertyValues = append(x.Record.PropertyValues, pv)
			}
		} else {
			x.Bool, x.String, x.Int, x.Decimal = valueAttrs(a.Value)
		}
		out = append(out, x)
	}
	return out
}

func valueAttrs(v edm.Value) (*bool, *string, *int64, string) {
	decimal := ""
	if v.Decimal != nil {
		decimal = v.Decimal.String()
	}
	return v.Bool, v.String, v.Int, decimal
}
