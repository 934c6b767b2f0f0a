// Package tstype synthesizes TypeScript type expressions from OpenAPI schemas.
//
// Resolve is a pure function: the same schema and options always produce the
// same expression and import list. Component references are never expanded;
// they resolve to the component's PascalCase name plus an ImportRef.
package tstype

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/mark3labs/oapi2client/internal/naming"
)

// Unknown is the expression used when a schema carries no usable type.
const Unknown = "unknown"

// ErrUnresolvedSchemaReference is returned for a $ref that neither names a
// component nor carries a loaded value.
var ErrUnresolvedSchemaReference = errors.New("unresolved schema reference")

// Options tunes type synthesis.
type Options struct {
	// UseDates maps string schemas with format date or date-time to Date.
	UseDates bool
}

// Result is a synthesized type expression and the named types it references.
type Result struct {
	Type    string
	Imports []ImportRef
}

// Resolve turns ref into a TypeScript type expression.
func Resolve(ref *openapi3.SchemaRef, opts Options) (Result, error) {
	var imports ImportSet
	t, err := resolve(ref, opts, &imports)
	if err != nil {
		return Result{}, err
	}
	return Result{Type: t, Imports: imports.Refs()}, nil
}

// HasDefault reports whether the schema behind ref declares a default value,
// either directly or on one of its allOf members.
func HasDefault(ref *openapi3.SchemaRef) bool {
	if ref == nil || ref.Value == nil {
		return false
	}
	if ref.Value.Default != nil {
		return true
	}
	for _, member := range ref.Value.AllOf {
		if HasDefault(member) {
			return true
		}
	}
	return false
}

// ComponentName extracts the component name from a local or external
// schema reference, or "" when ref does not point at a named schema.
func ComponentName(ref string) string {
	_, frag, ok := strings.Cut(ref, "#")
	if !ok {
		return ""
	}
	for _, prefix := range []string{"/components/schemas/", "/definitions/"} {
		if name, found := strings.CutPrefix(frag, prefix); found && name != "" && !strings.Contains(name, "/") {
			return name
		}
	}
	return ""
}

func resolve(ref *openapi3.SchemaRef, opts Options, imports *ImportSet) (string, error) {
	if ref == nil {
		return Unknown, nil
	}
	if ref.Ref != "" {
		if name := ComponentName(ref.Ref); name != "" {
			typeName := naming.Pascal(name)
			imports.Add(ImportRef{Name: typeName})
			return typeName, nil
		}
		if ref.Value == nil {
			return "", fmt.Errorf("%w: %s", ErrUnresolvedSchemaReference, ref.Ref)
		}
	}
	if ref.Value == nil {
		return Unknown, nil
	}
	t, err := inline(ref.Value, opts, imports)
	if err != nil {
		return "", err
	}
	if ref.Value.Nullable {
		t = orNull(t)
	}
	return t, nil
}

// orNull adds null to t unless t is unknown or already admits null.
func orNull(t string) string {
	if t == Unknown {
		return t
	}
	for _, member := range unionMembers(t) {
		if member == "null" {
			return t
		}
	}
	return t + " | null"
}

// unionMembers splits t at its top-level " | " separators.
func unionMembers(t string) []string {
	var members []string
	depth, start, quoted := 0, 0, false
	for i := 0; i < len(t); i++ {
		if quoted {
			switch t[i] {
			case '\\':
				i++
			case '\'':
				quoted = false
			}
			continue
		}
		switch t[i] {
		case '\'':
			quoted = true
		case '(', '{', '[', '<':
			depth++
		case ')', '}', ']', '>':
			depth--
		case '|':
			if depth == 0 {
				members = append(members, strings.TrimSpace(t[start:i]))
				start = i + 1
			}
		}
	}
	return append(members, strings.TrimSpace(t[start:]))
}

func inline(s *openapi3.Schema, opts Options, imports *ImportSet) (string, error) {
	if len(s.Enum) > 0 {
		return enumUnion(s.Enum), nil
	}
	if len(s.AllOf) > 0 {
		parts, err := resolveAll(s.AllOf, opts, imports)
		if err != nil {
			return "", err
		}
		if len(s.Properties) > 0 {
			obj, err := objectLiteral(s, opts, imports)
			if err != nil {
				return "", err
			}
			parts = append(parts, obj)
		}
		return joinTypes(parts, " & "), nil
	}
	if members := append(append([]*openapi3.SchemaRef(nil), s.OneOf...), s.AnyOf...); len(members) > 0 {
		parts, err := resolveAll(members, opts, imports)
		if err != nil {
			return "", err
		}
		return joinTypes(dedupe(parts), " | "), nil
	}

	switch s.Type {
	case openapi3.TypeString:
		switch {
		case s.Format == "binary":
			return "Blob", nil
		case opts.UseDates && (s.Format == "date" || s.Format == "date-time"):
			return "Date", nil
		}
		return "string", nil
	case openapi3.TypeInteger, openapi3.TypeNumber:
		return "number", nil
	case openapi3.TypeBoolean:
		return "boolean", nil
	case openapi3.TypeArray:
		return arrayOf(s.Items, opts, imports)
	case openapi3.TypeObject:
		return objectLiteral(s, opts, imports)
	}
	switch {
	case len(s.Properties) > 0:
		return objectLiteral(s, opts, imports)
	case s.Items != nil:
		return arrayOf(s.Items, opts, imports)
	}
	return Unknown, nil
}

func arrayOf(items *openapi3.SchemaRef, opts Options, imports *ImportSet) (string, error) {
	elem, err := resolve(items, opts, imports)
	if err != nil {
		return "", err
	}
	if strings.ContainsAny(elem, "|&") {
		elem = "(" + elem + ")"
	}
	return elem + "[]", nil
}

func objectLiteral(s *openapi3.Schema, opts Options, imports *ImportSet) (string, error) {
	if len(s.Properties) == 0 {
		return "{ [key: string]: unknown }", nil
	}
	required := make(map[string]bool, len(s.Required))
	for _, name := range s.Required {
		required[name] = true
	}
	names := make([]string, 0, len(s.Properties))
	for name := range s.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make([]string, 0, len(names))
	for _, name := range names {
		t, err := resolve(s.Properties[name], opts, imports)
		if err != nil {
			return "", fmt.Errorf("property %s: %w", name, err)
		}
		opt := "?"
		if required[name] {
			opt = ""
		}
		fields = append(fields, naming.PropertyKey(name)+opt+": "+t)
	}
	return "{ " + strings.Join(fields, "; ") + " }", nil
}

func resolveAll(refs []*openapi3.SchemaRef, opts Options, imports *ImportSet) ([]string, error) {
	out := make([]string, 0, len(refs))
	for _, r := range refs {
		t, err := resolve(r, opts, imports)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func joinTypes(parts []string, sep string) string {
	if len(parts) == 1 {
		return parts[0]
	}
	wrapped := make([]string, len(parts))
	for i, p := range parts {
		bare := strings.HasPrefix(p, "{") && strings.HasSuffix(p, "}")
		if strings.ContainsAny(p, "|&") && !bare {
			p = "(" + p + ")"
		}
		wrapped[i] = p
	}
	return strings.Join(wrapped, sep)
}

func enumUnion(values []any) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		switch val := v.(type) {
		case nil:
			parts = append(parts, "null")
		case string:
			parts = append(parts, "'"+strings.ReplaceAll(val, "'", "\\'")+"'")
		case bool:
			parts = append(parts, strconv.FormatBool(val))
		case float64:
			parts = append(parts, strconv.FormatFloat(val, 'f', -1, 64))
		default:
			parts = append(parts, fmt.Sprint(val))
		}
	}
	return strings.Join(dedupe(parts), " | ")
}

func dedupe(parts []string) []string {
	seen := make(map[string]struct{}, len(parts))
	out := parts[:0:0]
	for _, p := range parts {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
