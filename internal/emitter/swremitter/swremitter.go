// Package swremitter renders request functions plus SWR hooks (useSWR for
// queries, useSWRMutation for mutations) for each operation.
package swremitter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-json-experiment/json"

	"github.com/mark3labs/oapi2client/internal/contract"
	"github.com/mark3labs/oapi2client/internal/emitter"
	"github.com/mark3labs/oapi2client/internal/emitter/tsclient"
	"github.com/mark3labs/oapi2client/internal/naming"
)

// Name is the flavor name used on the command line.
const Name = "swr"

var axiosDependencies = []emitter.Dependency{{
	Dependency: "axios",
	Exports: []emitter.Export{
		{Name: "axios", Default: true, Values: true, SyntheticDefaultImport: true},
		{Name: "AxiosRequestConfig"},
		{Name: "AxiosResponse"},
		{Name: "AxiosError"},
	},
}}

var swrDependencies = []emitter.Dependency{
	{
		Dependency: "swr",
		Exports: []emitter.Export{
			{Name: "useSwr", Values: true, Default: true},
			{Name: "SWRConfiguration"},
			{Name: "Key"},
		},
	},
	{
		Dependency: "swr/mutation",
		Exports: []emitter.Export{
			{Name: "useSWRMutation", Values: true, Default: true},
			{Name: "SWRMutationConfiguration"},
		},
	},
}

// Plugin is the swr flavor.
type Plugin struct{}

// New returns the swr flavor.
func New() *Plugin { return &Plugin{} }

// Name returns the flavor name.
func (*Plugin) Name() string { return Name }

// Dependencies drops axios when a global mutator replaces it.
func (*Plugin) Dependencies(hasGlobalMutator bool) []emitter.Dependency {
	var deps []emitter.Dependency
	if !hasGlobalMutator {
		deps = append(deps, axiosDependencies...)
	}
	return append(deps, swrDependencies...)
}

// Header renders the Awaited helper unless the target has it, and the
// SecondParameter helper when a mutator takes request options.
func (*Plugin) Header(flags emitter.HeaderFlags) string {
	var b strings.Builder
	if !flags.HasAwaitedType {
		b.WriteString("type AwaitedInput<T> = PromiseLike<T> | T;\n\n")
		b.WriteString("type Awaited<O> = O extends AwaitedInput<infer T> ? T : never;\n\n")
	}
	if flags.IsMutatorWithRequestOptions {
		b.WriteString("// eslint-disable-next-line\n")
		b.WriteString("type SecondParameter<T extends (...args: any) => any> = T extends (\n")
		b.WriteString("  config: any,\n  args: infer P,\n) => any\n  ? P\n  : never;\n\n")
	}
	return b.String()
}

// Client renders the request function and, for GET and mutating verbs, the
// key function and hook. Other verbs get the request function only.
func (*Plugin) Client(op *contract.Operation, ctx *contract.Context) (emitter.Client, error) {
	fn := tsclient.RequestFunction(op, ctx)
	hook, err := Hook(op, ctx)
	if err != nil {
		return emitter.Client{}, err
	}
	impl := fn
	if hook != "" {
		impl = fn + "\n" + hook
	}
	return emitter.Client{Implementation: impl, Imports: op.Imports}, nil
}

// Hook renders the key function and hook for op. It returns "" for verbs
// that are neither queries nor mutations.
func Hook(op *contract.Operation, ctx *contract.Context) (string, error) {
	kind, err := emitter.Classify(op.Verb)
	if errors.Is(err, contract.ErrUnsupportedVerb) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	defaults, err := defaultOptions(op.Override.SWR.Options)
	if err != nil {
		return "", fmt.Errorf("swr options: %w", err)
	}
	var b strings.Builder
	keyFn := naming.Camel("get " + op.Name + " key")
	writeKeyFunction(&b, op, keyFn)
	b.WriteString("\n")
	writeHook(&b, op, ctx, kind, keyFn, defaults)
	return b.String(), nil
}

// keySlots are the arguments that identify a cached call.
func keySlots(op *contract.Operation) contract.Surface {
	return op.Surface.Filter(contract.RoleHeader, contract.RoleBody, contract.RoleOptions)
}

func writeKeyFunction(b *strings.Builder, op *contract.Operation, keyFn string) {
	elems := "`" + op.RouteTemplate() + "`"
	if op.Surface.Has(contract.RoleQuery) {
		elems += ", ...(params ? [params] : [])"
	}
	fmt.Fprintf(b, "export const %s = %s => [%s] as const;\n", keyFn, tsclient.Params(keySlots(op)), elems)
}

// transportOption is the destructured name of the per-call request options
// and the field that carries them, or "" when the operation takes none.
func transportOption(op *contract.Operation) (field, local, typ string) {
	opts, ok := op.Surface.Find(contract.RoleOptions)
	if !ok {
		return "", "", ""
	}
	if op.Mutator != nil {
		return "request", "requestOptions", opts.Type
	}
	return "axios", "axiosOptions", opts.Type
}

func writeHook(b *strings.Builder, op *contract.Operation, ctx *contract.Context, kind emitter.Kind, keyFn string, defaults string) {
	pascal := naming.Pascal(op.Name)
	errType := tsclient.ErrorType(op, ctx)
	key := ctx.Ident("Key")
	body, hasBody := op.Surface.Find(contract.RoleBody)
	isMutation := kind == emitter.KindMutation

	suffix, config, hookFn := "Query", ctx.Ident("SWRConfiguration"), ctx.Ident("useSwr")
	if isMutation {
		suffix, config, hookFn = "Mutation", ctx.Ident("SWRMutationConfiguration"), ctx.Ident("useSWRMutation")
	}

	fmt.Fprintf(b, "export type %s%sResult = NonNullable<Awaited<ReturnType<typeof %s>>>;\n", pascal, suffix, op.Name)
	fmt.Fprintf(b, "export type %s%sError = %s;\n\n", pascal, suffix, errType)

	generics := "Awaited<ReturnType<typeof " + op.Name + ">>, TError"
	if isMutation && hasBody {
		generics += ", " + key + ", " + body.TypeExpr()
	}
	swrType := config + "<" + generics + "> & { swrKey?: " + key + "; enabled?: boolean }"

	hookSlots := op.Surface.Filter(contract.RoleOptions)
	if isMutation {
		hookSlots = hookSlots.Filter(contract.RoleBody)
	}
	field, local, optType := transportOption(op)
	withOptions := op.Override.RequestOptionsEnabled()
	optionsSlot := contract.Slot{Name: "swrOptions", Type: swrType, Optional: true}
	if withOptions {
		inner := "swr?: " + swrType
		if field != "" {
			inner += "; " + field + "?: " + optType
		}
		optionsSlot = contract.Slot{Name: "options", Type: "{ " + inner + " }", Optional: true}
	}
	hookSlots = append(hookSlots, optionsSlot)

	fmt.Fprintf(b, "export const %s = <TError = %s>%s => {\n", naming.Camel("use "+op.Name), errType, tsclient.Params(hookSlots))
	if withOptions {
		destructure := "swr: swrOptions"
		if field != "" {
			destructure += ", " + field + ": " + local
		}
		fmt.Fprintf(b, "  const { %s } = options ?? {};\n\n", destructure)
	}

	enabled := "swrOptions?.enabled !== false"
	if guards := enabledGuards(op); len(guards) > 0 {
		enabled += " && !!(" + strings.Join(guards, " && ") + ")"
	}
	fmt.Fprintf(b, "  const isEnabled = %s;\n", enabled)
	fmt.Fprintf(b, "  const swrKey = swrOptions?.swrKey ?? (() => (isEnabled ? %s(%s) : null));\n",
		keyFn, tsclient.Args(keySlots(op), nil))

	callSlots := op.Surface.Filter(contract.RoleOptions)
	replace := map[contract.Role]string{}
	fnParams := ""
	if isMutation && hasBody {
		replace[contract.RoleBody] = "arg"
		fnParams = "_: " + key + ", { arg }: { arg: " + body.TypeExpr() + " }"
	}
	args := tsclient.Args(callSlots, replace)
	if local != "" {
		args = joinNonEmpty(args, local)
	}
	fmt.Fprintf(b, "  const swrFn = (%s) => %s(%s);\n\n", fnParams, op.Name, args)

	resultGenerics := "Awaited<ReturnType<typeof swrFn>>, TError"
	if isMutation && hasBody {
		resultGenerics += ", " + key + ", " + body.TypeExpr()
	}
	opts := "swrOptions"
	if defaults != "" {
		opts = "{ " + defaults + ", ...swrOptions }"
	}
	fmt.Fprintf(b, "  const query = %s<%s>(swrKey, swrFn, %s);\n\n", hookFn, resultGenerics, opts)
	b.WriteString("  return {\n    swrKey,\n    ...query,\n  };\n};\n")
}

// enabledGuards are the required key arguments. A missing one means the
// call cannot be made, so the hook stays idle.
func enabledGuards(op *contract.Operation) []string {
	var guards []string
	for _, s := range keySlots(op) {
		if !s.Optional {
			guards = append(guards, s.Name)
		}
	}
	return guards
}

// defaultOptions renders configured SWR options as object members, without
// the enclosing braces. Keys are sorted so output is stable.
func defaultOptions(opts map[string]any) (string, error) {
	if len(opts) == 0 {
		return "", nil
	}
	raw, err := json.Marshal(opts, json.Deterministic(true))
	if err != nil {
		return "", err
	}
	s := strings.TrimSpace(string(raw))
	return strings.TrimSuffix(strings.TrimPrefix(s, "{"), "}"), nil
}

func joinNonEmpty(parts ...string) string {
	out := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ", ")
}
