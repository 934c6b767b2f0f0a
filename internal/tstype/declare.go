package tstype

import (
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/mark3labs/oapi2client/internal/naming"
)

// Declaration is a top-level exported type alias.
type Declaration struct {
	Name    string
	Code    string
	Imports []ImportRef
}

// Declare renders `export type <Name> = <expr>;` for a component schema. The
// schema is expanded inline even when ref itself is a $ref, so aliases of
// other components still produce a usable declaration.
func Declare(name string, ref *openapi3.SchemaRef, opts Options) (Declaration, error) {
	typeName := naming.Pascal(name)
	var imports ImportSet
	var (
		t   string
		err error
	)
	switch {
	case ref == nil || ref.Value == nil:
		t, err = resolve(ref, opts, &imports)
	default:
		t, err = inline(ref.Value, opts, &imports)
		if err == nil && ref.Value.Nullable {
			t = orNull(t)
		}
	}
	if err != nil {
		return Declaration{}, fmt.Errorf("schema %s: %w", name, err)
	}
	var b strings.Builder
	if ref != nil && ref.Value != nil && ref.Value.Description != "" {
		fmt.Fprintf(&b, "/**\n * %s\n */\n", strings.ReplaceAll(strings.TrimSpace(ref.Value.Description), "\n", "\n * "))
	}
	fmt.Fprintf(&b, "export type %s = %s;\n", typeName, t)
	return Declaration{Name: typeName, Code: b.String(), Imports: imports.Refs()}, nil
}

// DeclareComponents renders every schema under components in name order.
func DeclareComponents(schemas openapi3.Schemas, opts Options) ([]Declaration, error) {
	names := make([]string, 0, len(schemas))
	for name := range schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]Declaration, 0, len(names))
	for _, name := range names {
		d, err := Declare(name, schemas[name], opts)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}
