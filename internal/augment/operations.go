package augment

import (
	"context"

	"github.com/nlstn/go-csdlgen/internal/docs"
	"github.com/nlstn/go-csdlgen/internal/edm"
	"github.com/nlstn/go-csdlgen/internal/paths"
	"github.com/nlstn/go-csdlgen/internal/resolver"
)

// CreateOperation synthesizes the action or function a namespace-qualified
// path segment invokes. Paths whose methods are all idempotent yield a
// function, anything else an action. The operation is bound to the type that
// owns the segment unless the segment sits on the service root.
func (e *Engine) CreateOperation(ctx context.Context, model *edm.Model, target *resolver.Target, mc *paths.MethodCollection) Outcome {
	qualifier := edm.NamespaceOnly(target.Member)
	name := edm.TypeOnly(target.Member)

	namespace := qualifier
	if e.FlattenActionsToNamespace != "" {
		namespace = e.FlattenActionsToNamespace
		name = qualifier + "." + name
	}

	schema := e.Registry.FindOrCreate(model, namespace, true)
	if schema == nil {
		e.logger.Debug("Skipping operation in reserved namespace", "path", target.Path, "operation", target.Member)
		return OutcomeIgnored
	}

	kind := edm.ActionKind
	if mc.AllMethodsIdempotent {
		kind = edm.FunctionKind
	}

	bindingType := ""
	if !target.OwnerIsContainer() {
		bindingType = target.OwnerType
	}

	if schema.FindOperation(kind, name, bindingType) != nil {
		return OutcomeOperationExists
	}

	op := &edm.Operation{
		Kind:    kind,
		Name:    name,
		IsBound: bindingType != "",
	}
	if op.IsBound {
		op.Parameters = append(op.Parameters, &edm.Parameter{
			Name:     edm.BindingParameterName,
			Type:     bindingType,
			Nullable: edm.BoolPtr(false),
		})
	}
	op.Parameters = appendParameters(op.Parameters, mc.RequestBodyParameters)
	op.Parameters = appendParameters(op.Parameters, mc.QueryParameters)

	if mc.ResponseType != "" {
		op.ReturnType = &edm.ReturnType{
			Type:     edm.ResourceTypeName(mc.ResponseType),
			Nullable: edm.BoolPtr(false),
		}
	}

	schema.AddOperation(op)
	e.obs.Metrics().RecordOperation(ctx, kind.String())
	e.logger.Info("Synthesized operation",
		"path", target.Path,
		"kind", kind.String(),
		"namespace", schema.Namespace,
		"name", name,
		"bindingType", bindingType)
	return OutcomeOperationCreated
}

func appendParameters(params []*edm.Parameter, defs []docs.ParameterDefinition) []*edm.Parameter {
	for _, d := range defs {
		if d.IsInstanceAnnotation() || hasParameter(params, d.Name) {
			continue
		}
		p := &edm.Parameter{Name: d.Name, Type: edm.ResourceTypeName(d.Type)}
		if d.IsRequired() {
			p.Nullable = edm.BoolPtr(false)
		}
		params = append(params, p)
	}
	return params
}

func hasParameter(params []*edm.Parameter, name string) bool {
	for _, p := range params {
		if p.Name == name {
			return true
		}
	}
	return false
}
