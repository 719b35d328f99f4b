package augment

import (
	"errors"
	"fmt"

	"github.com/nlstn/go-csdlgen/internal/edm"
)

// ErrUnknownAnnotationTarget is returned when a static annotation names no model element.
var ErrUnknownAnnotationTarget = errors.New("unknown annotation target")

// StaticAnnotation is a configured annotation. Target is an entity set or
// singleton name, or a qualified entity or complex type name.
type StaticAnnotation struct {
	Target string `yaml:"target" json:"target"`
	Term   string `yaml:"term" json:"term"`
	Value  string `yaml:"value" json:"value"`
}

// ApplyStaticAnnotations sets every annotation on its target. Unknown targets
// are collected into one error; the remaining annotations are still applied.
func ApplyStaticAnnotations(model *edm.Model, annotations []StaticAnnotation) error {
	var errs []error
	for _, a := range annotations {
		target := annotationTarget(model, a.Target)
		if target == nil {
			errs = append(errs, fmt.Errorf("%w: %s", ErrUnknownAnnotationTarget, a.Target))
			continue
		}
		edm.SetTerm(target, a.Term, edm.ParseValue(a.Value))
	}
	return errors.Join(errs...)
}

func annotationTarget(model *edm.Model, name string) *[]*edm.Annotation {
	if c := model.Container(); c != nil {
		if es := c.EntitySet(name); es != nil {
			return &es.Annotations
		}
		if s := c.Singleton(name); s != nil {
			return &s.Annotations
		}
	}
	if et := model.LookupEntityType(name); et != nil {
		return &et.Annotations
	}
	if ct := model.LookupComplexType(name); ct != nil {
		return &ct.Annotations
	}
	return nil
}
