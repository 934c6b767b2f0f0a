package emitter

import (
	"context"
	"runtime"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mark3labs/oapi2client/internal/contract"
	"github.com/mark3labs/oapi2client/internal/tstype"
)

// Result is one operation's emission under one plugin.
type Result struct {
	Operation      string
	Dependencies   []Dependency
	Header         string
	Implementation string
	Imports        []tstype.ImportRef
}

// Outcome pairs an operation with its emission result or failure.
type Outcome struct {
	Operation *contract.Operation
	Result    Result
	Err       error
}

// HeaderFlagsFor computes header flags covering every operation in ops.
func HeaderFlagsFor(ctx *contract.Context, ops ...*contract.Operation) HeaderFlags {
	flags := HeaderFlags{HasAwaitedType: ctx != nil && ctx.HasAwaitedType}
	for _, op := range ops {
		if m := op.Mutator; m != nil && m.HasSecondArg && op.Override.RequestOptionsEnabled() {
			flags.IsMutatorWithRequestOptions = true
			break
		}
	}
	return flags
}

// Emit runs p's capabilities over op in order: dependencies, header, client.
func Emit(op *contract.Operation, p Plugin, ctx *contract.Context) (Result, error) {
	res := Result{
		Operation:    op.Name,
		Dependencies: p.Dependencies(ctx.HasGlobalMutator()),
		Header:       p.Header(HeaderFlagsFor(ctx, op)),
	}
	client, err := p.Client(op, ctx)
	if err != nil {
		return Result{}, &contract.OperationError{Operation: op.Name, Verb: strings.ToUpper(string(op.Verb)), Route: op.Route, Err: err}
	}
	res.Implementation = client.Implementation
	res.Imports = client.Imports
	return res, nil
}

// EmitAll emits every operation concurrently and returns outcomes in input
// order. A failing operation is recorded in its outcome and never stops the
// others; the returned error is only set when ctx is cancelled.
func EmitAll(ctx context.Context, ops []*contract.Operation, p Plugin, cctx *contract.Context, log *zap.Logger) ([]Outcome, error) {
	if log == nil {
		log = zap.NewNop()
	}
	start := time.Now()
	outcomes := make([]Outcome, len(ops))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, op := range ops {
		i, op := i, op
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := Emit(op, p, cctx)
			outcomes[i] = Outcome{Operation: op, Result: res, Err: err}
			if err != nil {
				log.Warn("emit failed",
					zap.String("flavor", p.Name()),
					zap.String("operation", op.Name),
					zap.String("route", op.Route),
					zap.Error(err))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	log.Debug("emitted operations",
		zap.String("flavor", p.Name()),
		zap.Int("count", len(ops)),
		zap.Duration("elapsed", time.Since(start)))
	return outcomes, nil
}
