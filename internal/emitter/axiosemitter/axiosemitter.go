// Package axiosemitter renders one plain request function per operation.
package axiosemitter

import (
	"github.com/mark3labs/oapi2client/internal/contract"
	"github.com/mark3labs/oapi2client/internal/emitter"
	"github.com/mark3labs/oapi2client/internal/emitter/tsclient"
	"github.com/mark3labs/oapi2client/internal/naming"
)

// Name is the flavor name used on the command line.
const Name = "axios"

// Plugin is the axios flavor.
type Plugin struct{}

// New returns the axios flavor.
func New() *Plugin { return &Plugin{} }

// Name returns the flavor name.
func (*Plugin) Name() string { return Name }

// Dependencies drops axios when a global mutator replaces it.
func (*Plugin) Dependencies(hasGlobalMutator bool) []emitter.Dependency {
	if hasGlobalMutator {
		return nil
	}
	return []emitter.Dependency{{
		Dependency: "axios",
		Exports: []emitter.Export{
			{Name: "axios", Default: true, Values: true, SyntheticDefaultImport: true},
			{Name: "AxiosRequestConfig"},
			{Name: "AxiosResponse"},
			{Name: "AxiosError"},
		},
	}}
}

// Header renders the Awaited helper unless the target has it, and the
// SecondParameter helper when a mutator takes request options.
func (*Plugin) Header(flags emitter.HeaderFlags) string {
	var header string
	if !flags.HasAwaitedType {
		header += "type AwaitedInput<T> = PromiseLike<T> | T;\n\n" +
			"type Awaited<O> = O extends AwaitedInput<infer T> ? T : never;\n\n"
	}
	if flags.IsMutatorWithRequestOptions {
		header += "// eslint-disable-next-line\n" +
			"type SecondParameter<T extends (...args: any) => any> = T extends (\n" +
			"  config: any,\n  args: infer P,\n) => any\n  ? P\n  : never;\n\n"
	}
	return header
}

// Client renders the request function and a result type alias. Every verb
// is rendered; there is no hook to classify for.
func (*Plugin) Client(op *contract.Operation, ctx *contract.Context) (emitter.Client, error) {
	impl := tsclient.RequestFunction(op, ctx)
	impl += "export type " + naming.Pascal(op.Name) + "Result = NonNullable<Awaited<ReturnType<typeof " + op.Name + ">>>;\n"
	return emitter.Client{Implementation: impl, Imports: op.Imports}, nil
}
