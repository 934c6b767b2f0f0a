// Package generate runs the whole pipeline for one API description: collect
// operations, build contracts, emit them through a flavor and assemble the
// output files.
package generate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"go.uber.org/zap"

	"github.com/mark3labs/oapi2client/internal/contract"
	"github.com/mark3labs/oapi2client/internal/emitter"
	"github.com/mark3labs/oapi2client/internal/emitter/axiosemitter"
	"github.com/mark3labs/oapi2client/internal/emitter/swremitter"
	"github.com/mark3labs/oapi2client/internal/naming"
	"github.com/mark3labs/oapi2client/internal/output"
	"github.com/mark3labs/oapi2client/internal/spec"
	"github.com/mark3labs/oapi2client/internal/tstype"
)

// Banner marks files written by the generator.
const Banner = "Generated by oapi2client"

// ErrUnknownFlavor is returned for a client flavor missing from the registry.
var ErrUnknownFlavor = errors.New("unknown client flavor")

// DefaultRegistry holds the built-in flavors.
func DefaultRegistry() *emitter.Registry {
	return emitter.NewRegistry(axiosemitter.New(), swremitter.New())
}

// Options selects the flavor, the output layout and the generation context.
type Options struct {
	Flavor string
	// Target is the client file path.
	Target string
	// Schemas is a separate model file path; empty keeps models in Target.
	Schemas string
	Context *contract.Context
	Filters []spec.BuildOption
}

// Failure is an operation that could not be generated.
type Failure struct {
	Operation string
	Route     string
	Err       error
}

func (f Failure) Error() string { return f.Err.Error() }

// Result holds the files to write and the operations that failed. Failed
// operations are left out of the files; everything else is still emitted.
type Result struct {
	Files      []output.File
	Operations int
	Failures   []Failure
}

// Generator runs the pipeline with a fixed registry and logger.
type Generator struct {
	registry *emitter.Registry
	log      *zap.Logger
}

// New returns a Generator. A nil registry means DefaultRegistry and a nil
// logger discards output.
func New(registry *emitter.Registry, log *zap.Logger) *Generator {
	if registry == nil {
		registry = DefaultRegistry()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Generator{registry: registry, log: log}
}

// Run generates the client files for doc.
func (g *Generator) Run(ctx context.Context, doc *openapi3.T, opts Options) (*Result, error) {
	start := time.Now()
	plugin, ok := g.registry.Get(opts.Flavor)
	if !ok {
		return nil, fmt.Errorf("%w %q (available: %s)", ErrUnknownFlavor, opts.Flavor, strings.Join(g.registry.Names(), ", "))
	}
	if strings.TrimSpace(opts.Target) == "" {
		return nil, errors.New("generate: target is required")
	}
	cctx := opts.Context
	if cctx == nil {
		cctx = &contract.Context{}
	}

	collected, err := spec.Collect(ctx, doc, opts.Filters...)
	if err != nil {
		return nil, err
	}
	res := &Result{Operations: len(collected.Operations)}

	components, err := tstype.DeclareComponents(collected.Schemas, tstype.Options{UseDates: cctx.UseDates})
	if err != nil {
		return nil, fmt.Errorf("component schemas: %w", err)
	}
	deps := plugin.Dependencies(cctx.HasGlobalMutator())
	if aliases := exportAliases(deps, components); len(aliases) > 0 {
		local := *cctx
		local.Aliases = aliases
		cctx = &local
	}

	ops := make([]*contract.Operation, 0, len(collected.Operations))
	for _, raw := range collected.Operations {
		op, err := contract.Build(raw, cctx)
		if err != nil {
			g.log.Warn("skipping operation",
				zap.String("operation", raw.Name),
				zap.String("route", raw.Route),
				zap.Error(err))
			res.Failures = append(res.Failures, Failure{Operation: raw.Name, Route: raw.Route, Err: err})
			continue
		}
		ops = append(ops, op)
	}

	outcomes, err := emitter.EmitAll(ctx, ops, plugin, cctx, g.log)
	if err != nil {
		return nil, err
	}

	f := file{
		title:     collected.Title,
		version:   collected.Version,
		deps:      deps,
		aliases:   cctx.Aliases,
		synthetic: cctx.SyntheticDefaultImports,
		models:    components,
	}
	var emitted []*contract.Operation
	for _, o := range outcomes {
		if o.Err != nil {
			res.Failures = append(res.Failures, Failure{Operation: o.Operation.Name, Route: o.Operation.Route, Err: o.Err})
			continue
		}
		emitted = append(emitted, o.Operation)
		f.impls = append(f.impls, o.Result.Implementation)
		f.imports.Add(o.Result.Imports...)
		f.models = appendModels(f.models, o.Operation.Models)
	}
	f.header = plugin.Header(emitter.HeaderFlagsFor(cctx, emitted...))

	if opts.Schemas == "" {
		res.Files = []output.File{{RelPath: opts.Target, Content: []byte(f.client(""))}}
	} else {
		res.Files = []output.File{
			{RelPath: opts.Target, Content: []byte(f.client(modelImportPath(opts.Target, opts.Schemas)))},
			{RelPath: opts.Schemas, Content: []byte(f.schemas())},
		}
	}

	g.log.Debug("generated",
		zap.String("flavor", opts.Flavor),
		zap.Int("operations", res.Operations),
		zap.Int("failed", len(res.Failures)),
		zap.Duration("elapsed", time.Since(start)))
	return res, nil
}

// exportAliases renames dependency exports whose names a component model
// declares, e.g. swr's Key becomes SwrKey. Operation-local models always end
// in Params, Headers or Body and cannot collide.
func exportAliases(deps []emitter.Dependency, models []tstype.Declaration) map[string]string {
	taken := make(map[string]bool, len(models))
	for _, m := range models {
		taken[m.Name] = true
	}
	var aliases map[string]string
	for _, dep := range deps {
		for _, exp := range dep.Exports {
			if !taken[exp.Name] {
				continue
			}
			alias := naming.Pascal(dep.Dependency) + exp.Name
			for n := 2; taken[alias]; n++ {
				alias = fmt.Sprintf("%s%s%d", naming.Pascal(dep.Dependency), exp.Name, n)
			}
			taken[alias] = true
			if aliases == nil {
				aliases = map[string]string{}
			}
			aliases[exp.Name] = alias
		}
	}
	return aliases
}

// appendModels adds decls whose names are not declared yet.
func appendModels(models []tstype.Declaration, decls []tstype.Declaration) []tstype.Declaration {
	for _, d := range decls {
		dup := false
		for _, m := range models {
			if m.Name == d.Name {
				dup = true
				break
			}
		}
		if !dup {
			models = append(models, d)
		}
	}
	return models
}
