package emitter

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark3labs/oapi2client/internal/contract"
	"github.com/mark3labs/oapi2client/internal/spec"
)

type recordingPlugin struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]bool
}

func (p *recordingPlugin) record(s string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, s)
}

func (p *recordingPlugin) Name() string { return "recording" }

func (p *recordingPlugin) Dependencies(hasGlobalMutator bool) []Dependency {
	p.record(fmt.Sprintf("dependencies:%v", hasGlobalMutator))
	return []Dependency{{Dependency: "dep"}}
}

func (p *recordingPlugin) Header(flags HeaderFlags) string {
	p.record("header")
	return fmt.Sprintf("header:%v", flags.IsMutatorWithRequestOptions)
}

func (p *recordingPlugin) Client(op *contract.Operation, _ *contract.Context) (Client, error) {
	p.record("client")
	if p.fail[op.Name] {
		return Client{}, errors.New("boom")
	}
	return Client{Implementation: "impl:" + op.Name}, nil
}

func TestClassify(t *testing.T) {
	t.Parallel()
	for verb, want := range map[spec.HttpMethod]Kind{
		spec.GET:    KindQuery,
		spec.POST:   KindMutation,
		spec.PUT:    KindMutation,
		spec.PATCH:  KindMutation,
		spec.DELETE: KindMutation,
	} {
		got, err := Classify(verb)
		require.NoError(t, err, verb)
		assert.Equal(t, want, got, verb)
	}
	for _, verb := range []spec.HttpMethod{spec.HEAD, spec.OPTIONS, spec.TRACE} {
		_, err := Classify(verb)
		assert.ErrorIs(t, err, contract.ErrUnsupportedVerb, verb)
	}
}

func TestEmit_RunsCapabilitiesInOrder(t *testing.T) {
	t.Parallel()
	p := &recordingPlugin{}
	ctx := &contract.Context{Override: contract.Override{Mutator: &contract.Mutator{Name: "m", HasSecondArg: true}}}
	op := &contract.Operation{Name: "listPets", Route: "/pets", Verb: spec.GET, Mutator: ctx.Override.Mutator}

	res, err := Emit(op, p, ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"dependencies:true", "header", "client"}, p.calls)
	assert.Equal(t, "header:true", res.Header)
	assert.Equal(t, "impl:listPets", res.Implementation)
	assert.Equal(t, "listPets", res.Operation)
}

func TestEmit_WrapsClientError(t *testing.T) {
	t.Parallel()
	p := &recordingPlugin{fail: map[string]bool{"bad": true}}
	_, err := Emit(&contract.Operation{Name: "bad", Route: "/bad", Verb: spec.POST}, p, nil)
	var oe *contract.OperationError
	require.ErrorAs(t, err, &oe)
	assert.Equal(t, "bad", oe.Operation)
	assert.Contains(t, err.Error(), "POST /bad")
}

func TestEmitAll_KeepsOrderAndIsolatesFailures(t *testing.T) {
	t.Parallel()
	var ops []*contract.Operation
	for i := 0; i < 20; i++ {
		ops = append(ops, &contract.Operation{Name: fmt.Sprintf("op%d", i), Route: "/r", Verb: spec.GET})
	}
	p := &recordingPlugin{fail: map[string]bool{"op3": true, "op11": true}}

	outcomes, err := EmitAll(context.Background(), ops, p, &contract.Context{}, nil)
	require.NoError(t, err)
	require.Len(t, outcomes, len(ops))
	for i, o := range outcomes {
		assert.Same(t, ops[i], o.Operation)
		if o.Operation.Name == "op3" || o.Operation.Name == "op11" {
			assert.Error(t, o.Err)
			continue
		}
		require.NoError(t, o.Err)
		assert.Equal(t, "impl:"+ops[i].Name, o.Result.Implementation)
	}
}

func TestEmitAll_Cancelled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := EmitAll(ctx, []*contract.Operation{{Name: "a"}}, &recordingPlugin{}, nil, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHeaderFlagsFor(t *testing.T) {
	t.Parallel()
	off := false
	withArg := &contract.Mutator{Name: "m", HasSecondArg: true}
	cases := []struct {
		name string
		op   *contract.Operation
		want bool
	}{
		{"no mutator", &contract.Operation{}, false},
		{"mutator without second arg", &contract.Operation{Mutator: &contract.Mutator{Name: "m"}}, false},
		{"mutator with second arg", &contract.Operation{Mutator: withArg}, true},
		{"request options off", &contract.Operation{Mutator: withArg, Override: contract.Override{RequestOptions: &off}}, false},
	}
	for _, tc := range cases {
		flags := HeaderFlagsFor(&contract.Context{HasAwaitedType: true}, tc.op)
		assert.Equal(t, tc.want, flags.IsMutatorWithRequestOptions, tc.name)
		assert.True(t, flags.HasAwaitedType, tc.name)
	}
}

func TestRegistry(t *testing.T) {
	t.Parallel()
	r := NewRegistry(&recordingPlugin{})
	p, ok := r.Get("recording")
	require.True(t, ok)
	assert.Equal(t, "recording", p.Name())
	assert.Equal(t, []string{"recording"}, r.Names())
	assert.Error(t, r.Register(&recordingPlugin{}))

	_, ok = r.Get("missing")
	assert.False(t, ok)
}
