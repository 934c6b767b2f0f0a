package contract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mark3labs/oapi2client/internal/naming"
	"github.com/mark3labs/oapi2client/internal/spec"
	"github.com/mark3labs/oapi2client/internal/tstype"
)

// Params holds an operation's normalized parameters by location, each in
// declaration order.
type Params struct {
	Path   []Param
	Query  []Param
	Header []Param
	Cookie []Param
}

// Operation is the uniform, immutable description of one API operation that
// every emission plugin renders from.
type Operation struct {
	Name        string
	OperationID string
	Route       string
	Verb        spec.HttpMethod
	Summary     string
	Deprecated  bool

	Params   Params
	Surface  Surface
	Body     *Body
	Response Response
	Mutator  *Mutator
	Override Override

	// Models are the type declarations this operation introduces: the query
	// and header aggregates and any hoisted inline body.
	Models  []tstype.Declaration
	Imports []tstype.ImportRef
}

var routeParam = regexp.MustCompile(`\{([^}]+)\}`)

// RouteTemplate returns the route as a template literal body with path
// placeholders bound to their argument names.
// Example: "/pets/{pet_id}" -> "/pets/${petId}"
func (o *Operation) RouteTemplate() string {
	return routeParam.ReplaceAllStringFunc(o.Route, func(m string) string {
		return "${" + naming.Camel(m[1:len(m)-1]) + "}"
	})
}

// QueryTypeName is the aggregate query parameter type name.
func (o *Operation) QueryTypeName() string { return naming.Pascal(o.Name + " params") }

// HeaderTypeName is the aggregate header parameter type name.
func (o *Operation) HeaderTypeName() string { return naming.Pascal(o.Name + " headers") }

// Build normalizes op into an Operation under ctx. Every failure is returned
// as an *OperationError naming the operation and route.
func Build(op spec.Operation, ctx *Context) (*Operation, error) {
	out, err := build(op, ctx)
	if err != nil {
		return nil, &OperationError{Operation: op.Name, Verb: strings.ToUpper(string(op.Verb)), Route: op.Route, Err: err}
	}
	return out, nil
}

func build(op spec.Operation, ctx *Context) (*Operation, error) {
	override := ctx.OverrideFor(op)
	out := &Operation{
		Name:        op.Name,
		OperationID: op.OperationID,
		Route:       op.Route,
		Verb:        op.Verb,
		Summary:     op.Summary,
		Deprecated:  op.Deprecated,
		Override:    override,
		Mutator:     override.Mutator,
	}

	var imports tstype.ImportSet
	for _, raw := range op.Parameters {
		if raw == nil {
			continue
		}
		p, err := NormalizeParam(raw, ctx)
		if err != nil {
			return nil, err
		}
		imports.Add(p.Imports...)
		switch p.In {
		case LocationPath:
			out.Params.Path = append(out.Params.Path, p)
		case LocationQuery:
			out.Params.Query = append(out.Params.Query, p)
		case LocationHeader:
			out.Params.Header = append(out.Params.Header, p)
		case LocationCookie:
			out.Params.Cookie = append(out.Params.Cookie, p)
		}
	}

	body, bodyModel, err := NormalizeBody(op.RequestBody, op.Name, override, ctx)
	if err != nil {
		return nil, fmt.Errorf("request body: %w", err)
	}
	out.Body = body
	if body != nil {
		imports.Add(body.Imports...)
	}

	resp, err := NormalizeResponse(op.Responses, ctx)
	if err != nil {
		return nil, fmt.Errorf("responses: %w", err)
	}
	out.Response = resp
	imports.Add(resp.Imports...)

	// Path arguments are positional and always required: the route cannot be
	// built without them.
	for _, p := range out.Params.Path {
		out.Surface = append(out.Surface, Slot{Role: RolePath, Name: naming.Camel(p.Name), Type: p.Type})
	}
	if len(out.Params.Query) > 0 {
		decl := aggregate(out.QueryTypeName(), out.Params.Query)
		out.Models = append(out.Models, decl)
		imports.Add(tstype.ImportRef{Name: decl.Name})
		out.Surface = append(out.Surface, Slot{Role: RoleQuery, Name: "params", Type: decl.Name, Optional: allOptional(out.Params.Query)})
	}
	if len(out.Params.Header) > 0 {
		decl := aggregate(out.HeaderTypeName(), out.Params.Header)
		out.Models = append(out.Models, decl)
		imports.Add(tstype.ImportRef{Name: decl.Name})
		out.Surface = append(out.Surface, Slot{Role: RoleHeader, Name: "headers", Type: decl.Name, Optional: allOptional(out.Params.Header)})
	}
	if body != nil {
		if bodyModel != nil {
			out.Models = append(out.Models, *bodyModel)
			imports.Add(bodyModel.Imports...)
			imports.Add(tstype.ImportRef{Name: bodyModel.Name})
		}
		slot := Slot{Role: RoleBody, Name: body.Name, Type: body.Type, Optional: !body.Required}
		if m := out.Mutator; m != nil && m.BodyTypeName != "" {
			slot.Wrapper = m.BodyTypeName
			imports.Add(tstype.ImportRef{Name: m.BodyTypeName, Path: m.Path})
		}
		out.Surface = append(out.Surface, slot)
	}
	if override.RequestOptionsEnabled() {
		switch m := out.Mutator; {
		case m == nil:
			out.Surface = append(out.Surface, Slot{Role: RoleOptions, Name: "options", Type: ctx.Ident("AxiosRequestConfig"), Optional: true})
		case m.HasSecondArg:
			out.Surface = append(out.Surface, Slot{Role: RoleOptions, Name: "options", Type: "SecondParameter<typeof " + m.Name + ">", Optional: true})
		}
	}

	if m := out.Mutator; m != nil {
		imports.Add(tstype.ImportRef{Name: m.Name, Path: m.Path, Default: m.Default, Values: true})
		if m.HasErrorType {
			imports.Add(tstype.ImportRef{Name: "ErrorType", Path: m.Path})
		}
	}
	out.Imports = imports.Refs()
	return out, nil
}

func allOptional(params []Param) bool {
	for _, p := range params {
		if !p.Optional {
			return false
		}
	}
	return true
}

// aggregate declares the object type grouping params, keeping their
// declaration order.
func aggregate(name string, params []Param) tstype.Declaration {
	var (
		b       strings.Builder
		imports tstype.ImportSet
	)
	fmt.Fprintf(&b, "export type %s = {\n", name)
	for _, p := range params {
		if p.Description != "" {
			fmt.Fprintf(&b, "  /**\n   * %s\n   */\n", strings.ReplaceAll(strings.TrimSpace(p.Description), "\n", "\n   * "))
		}
		opt := ""
		if p.Optional {
			opt = "?"
		}
		fmt.Fprintf(&b, "  %s%s: %s;\n", naming.PropertyKey(p.Name), opt, p.Type)
		imports.Add(p.Imports...)
	}
	b.WriteString("};\n")
	return tstype.Declaration{Name: name, Code: b.String(), Imports: imports.Refs()}
}
