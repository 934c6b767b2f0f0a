// Package tsclient renders the TypeScript pieces shared by every client
// flavor: signatures, request functions, mutator configs and form bodies.
package tsclient

import (
	"fmt"
	"strings"

	"github.com/mark3labs/oapi2client/internal/contract"
	"github.com/mark3labs/oapi2client/internal/spec"
)

const indent = "  "

// Params renders slots as a multi-line parameter list including the
// surrounding parentheses. An optional slot followed by a required one is
// written as `name: T | undefined` so the argument order survives.
func Params(slots contract.Surface) string {
	if len(slots) == 0 {
		return "()"
	}
	var b strings.Builder
	b.WriteString("(\n")
	for i, s := range slots {
		b.WriteString(indent)
		b.WriteString(Param(s, requiredAfter(slots, i)))
		b.WriteString(",\n")
	}
	b.WriteString(")")
	return b.String()
}

// Param renders one slot. trailingRequired reports whether a required slot
// follows it.
func Param(s contract.Slot, trailingRequired bool) string {
	switch {
	case !s.Optional:
		return s.Name + ": " + s.TypeExpr()
	case trailingRequired:
		return s.Name + ": " + s.TypeExpr() + " | undefined"
	}
	return s.Name + "?: " + s.TypeExpr()
}

func requiredAfter(slots contract.Surface, i int) bool {
	for _, s := range slots[i+1:] {
		if !s.Optional {
			return true
		}
	}
	return false
}

// Args renders slot names as a call argument list. Roles in replace are
// passed as the mapped expression instead.
func Args(slots contract.Surface, replace map[contract.Role]string) string {
	args := make([]string, 0, len(slots))
	for _, s := range slots {
		if expr, ok := replace[s.Role]; ok {
			args = append(args, expr)
			continue
		}
		args = append(args, s.Name)
	}
	return strings.Join(args, ", ")
}

// ErrorType is the TypeScript error type of op's calls.
func ErrorType(op *contract.Operation, ctx *contract.Context) string {
	switch m := op.Mutator; {
	case m == nil:
		return ctx.Ident("AxiosError") + "<" + op.Response.Error + ">"
	case m.HasErrorType:
		return "ErrorType<" + op.Response.Error + ">"
	}
	return op.Response.Error
}

// JSDoc renders the operation's summary and deprecation notice, or "".
func JSDoc(op *contract.Operation) string {
	if op.Summary == "" && !op.Deprecated {
		return ""
	}
	var b strings.Builder
	b.WriteString("/**\n")
	if op.Summary != "" {
		fmt.Fprintf(&b, " * %s\n", strings.ReplaceAll(strings.TrimSpace(op.Summary), "\n", "\n * "))
	}
	if op.Deprecated {
		b.WriteString(" * @deprecated\n")
	}
	b.WriteString(" */\n")
	return b.String()
}

// FormBody renders the statements that build a form payload from the body
// argument and returns them with the expression to send. Plain bodies
// return no statements and the body argument itself.
func FormBody(op *contract.Operation) (code, data string) {
	body := op.Body
	if body == nil {
		return "", ""
	}
	switch {
	case body.IsFormData:
		return formLoop("formData", "new FormData()", body.Name,
			"value instanceof Blob ? value : typeof value === 'object' ? JSON.stringify(value) : String(value)"), "formData"
	case body.IsFormURLEncoded:
		return formLoop("formUrlEncoded", "new URLSearchParams()", body.Name, "String(value)"), "formUrlEncoded"
	}
	return "", body.Name
}

func formLoop(v, init, src, value string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%sconst %s = %s;\n", indent, v, init)
	fmt.Fprintf(&b, "%sObject.entries(%s ?? {}).forEach(([key, value]) => {\n", indent, src)
	fmt.Fprintf(&b, "%s%sif (value !== undefined && value !== null) {\n", indent, indent)
	fmt.Fprintf(&b, "%s%s%s%s.append(key, %s);\n", indent, indent, indent, v, value)
	fmt.Fprintf(&b, "%s%s}\n", indent, indent)
	fmt.Fprintf(&b, "%s});\n", indent)
	return b.String()
}

// object renders a multi-line object literal at depth levels of indentation.
func object(fields []string, depth int) string {
	pad := strings.Repeat(indent, depth)
	var b strings.Builder
	b.WriteString("{\n")
	for _, f := range fields {
		b.WriteString(pad + indent + f + ",\n")
	}
	b.WriteString(pad + "}")
	return b.String()
}

// MutatorConfig renders the request config object handed to a mutator.
func MutatorConfig(op *contract.Operation, data string, depth int) string {
	fields := []string{
		"url: `" + op.RouteTemplate() + "`",
		"method: '" + string(op.Verb) + "'",
	}
	var headers []string
	if op.Body != nil && !op.Body.IsFormData {
		headers = append(headers, "'Content-Type': '"+op.Body.MediaType+"'")
	}
	if op.Surface.Has(contract.RoleHeader) {
		headers = append(headers, "...headers")
	}
	if len(headers) > 0 {
		fields = append(fields, "headers: { "+strings.Join(headers, ", ")+" }")
	}
	if data != "" {
		fields = append(fields, "data: "+data)
	}
	if op.Surface.Has(contract.RoleQuery) {
		fields = append(fields, "params")
	}
	return object(fields, depth)
}

// AxiosOptions renders the request options argument of a direct axios call,
// or "" when there is nothing to pass.
func AxiosOptions(op *contract.Operation, depth int) string {
	withOptions := op.Surface.Has(contract.RoleOptions)
	var fields []string
	if withOptions {
		fields = append(fields, "...options")
	}
	if op.Surface.Has(contract.RoleQuery) {
		if withOptions {
			fields = append(fields, "params: { ...params, ...options?.params }")
		} else {
			fields = append(fields, "params")
		}
	}
	if op.Surface.Has(contract.RoleHeader) {
		if withOptions {
			fields = append(fields, "headers: { ...headers, ...options?.headers }")
		} else {
			fields = append(fields, "headers")
		}
	}
	switch len(fields) {
	case 0:
		return ""
	case 1:
		if withOptions {
			return "options"
		}
	}
	return object(fields, depth)
}

// AxiosCall renders the default-transport call expression for op.
func AxiosCall(op *contract.Operation, ctx *contract.Context, data string) string {
	client := ctx.Ident("axios")
	if ctx == nil || !ctx.SyntheticDefaultImports {
		client += ".default"
	}
	url := "`" + op.RouteTemplate() + "`"
	opts := AxiosOptions(op, 1)

	switch op.Verb {
	case spec.POST, spec.PUT, spec.PATCH:
		if data == "" {
			data = "undefined"
		}
		return fmt.Sprintf("%s.%s(%s)", client, op.Verb, joinArgs(url, data, opts))
	case spec.GET, spec.DELETE, spec.HEAD, spec.OPTIONS:
		if data != "" {
			// Bodies on GET-like verbs travel in the config.
			if opts == "" {
				opts = "{ data: " + data + " }"
			} else {
				opts = "{ data: " + data + ", ..." + opts + " }"
			}
		}
		return fmt.Sprintf("%s.%s(%s)", client, op.Verb, joinArgs(url, opts))
	}
	cfg := []string{"url: " + url, "method: '" + string(op.Verb) + "'"}
	if data != "" {
		cfg = append(cfg, "data: "+data)
	}
	if opts != "" {
		cfg = append(cfg, "..."+opts)
	}
	return fmt.Sprintf("%s.request(%s)", client, object(cfg, 1))
}

func joinArgs(args ...string) string {
	out := args[:0:0]
	for _, a := range args {
		if a != "" {
			out = append(out, a)
		}
	}
	return strings.Join(out, ", ")
}

// RequestFunction renders the function performing op's HTTP call, through
// the operation's mutator when one is bound and through axios otherwise.
func RequestFunction(op *contract.Operation, ctx *contract.Context) string {
	var b strings.Builder
	b.WriteString(JSDoc(op))
	form, data := FormBody(op)

	if m := op.Mutator; m != nil {
		fmt.Fprintf(&b, "export const %s = %s => {\n", op.Name, Params(op.Surface))
		b.WriteString(form)
		fmt.Fprintf(&b, "%sreturn %s<%s>(\n", indent, m.Name, op.Response.Success)
		fmt.Fprintf(&b, "%s%s%s,\n", indent, indent, MutatorConfig(op, data, 2))
		if op.Surface.Has(contract.RoleOptions) {
			fmt.Fprintf(&b, "%s%soptions,\n", indent, indent)
		}
		fmt.Fprintf(&b, "%s);\n};\n", indent)
		return b.String()
	}

	fmt.Fprintf(&b, "export const %s = %s: Promise<%s<%s>> => {\n", op.Name, Params(op.Surface), ctx.Ident("AxiosResponse"), op.Response.Success)
	b.WriteString(form)
	fmt.Fprintf(&b, "%sreturn %s;\n};\n", indent, AxiosCall(op, ctx, data))
	return b.String()
}
