package swremitter

import (
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark3labs/oapi2client/internal/contract"
	"github.com/mark3labs/oapi2client/internal/emitter"
	"github.com/mark3labs/oapi2client/internal/emitter/axiosemitter"
	"github.com/mark3labs/oapi2client/internal/spec"
)

func str() *openapi3.SchemaRef { return openapi3.NewSchemaRef("", openapi3.NewStringSchema()) }

func petContent() openapi3.Content {
	return openapi3.Content{"application/json": &openapi3.MediaType{
		Schema: &openapi3.SchemaRef{Ref: "#/components/schemas/Pet", Value: openapi3.NewObjectSchema()},
	}}
}

func showPet() spec.Operation {
	return spec.Operation{
		Name: "showPet", Route: "/pets/{petId}", Verb: spec.GET,
		Parameters: []*openapi3.Parameter{
			{Name: "petId", In: "path", Required: true, Schema: str()},
			{Name: "fields", In: "query", Schema: str()},
			{Name: "X-Trace", In: "header", Schema: str()},
		},
		Responses: map[string]*openapi3.Response{"200": {Content: petContent()}},
	}
}

func createPet() spec.Operation {
	return spec.Operation{
		Name: "createPet", Route: "/pets", Verb: spec.POST,
		RequestBody: &openapi3.RequestBody{Required: true, Content: petContent()},
		Responses:   map[string]*openapi3.Response{"201": {Content: petContent()}},
	}
}

func render(t *testing.T, op spec.Operation, ctx *contract.Context) string {
	t.Helper()
	c, err := contract.Build(op, ctx)
	require.NoError(t, err)
	out, err := New().Client(c, ctx)
	require.NoError(t, err)
	return out.Implementation
}

func TestClient_QueryHookWithAxiosOptions(t *testing.T) {
	t.Parallel()
	got := render(t, showPet(), &contract.Context{SyntheticDefaultImports: true})

	assert.Contains(t, got, "export const getShowPetKey = (\n  petId: string,\n  params?: ShowPetParams,\n) => [`/pets/${petId}`, ...(params ? [params] : [])] as const;\n")
	assert.Contains(t, got, "export type ShowPetQueryResult = NonNullable<Awaited<ReturnType<typeof showPet>>>;\n")
	assert.Contains(t, got, "export type ShowPetQueryError = AxiosError<unknown>;\n")
	assert.Contains(t, got, "export const useShowPet = <TError = AxiosError<unknown>>(\n"+
		"  petId: string,\n"+
		"  params?: ShowPetParams,\n"+
		"  headers?: ShowPetHeaders,\n"+
		"  options?: { swr?: SWRConfiguration<Awaited<ReturnType<typeof showPet>>, TError> & { swrKey?: Key; enabled?: boolean }; axios?: AxiosRequestConfig },\n"+
		") => {\n")
	assert.Contains(t, got, "  const { swr: swrOptions, axios: axiosOptions } = options ?? {};\n")
	assert.Contains(t, got, "  const isEnabled = swrOptions?.enabled !== false && !!(petId);\n")
	assert.Contains(t, got, "  const swrKey = swrOptions?.swrKey ?? (() => (isEnabled ? getShowPetKey(petId, params) : null));\n")
	assert.Contains(t, got, "  const swrFn = () => showPet(petId, params, headers, axiosOptions);\n")
	assert.Contains(t, got, "  const query = useSwr<Awaited<ReturnType<typeof swrFn>>, TError>(swrKey, swrFn, swrOptions);\n")
	assert.Contains(t, got, "  return {\n    swrKey,\n    ...query,\n  };\n")
}

func TestClient_MutationHookWithMutatorSecondArg(t *testing.T) {
	t.Parallel()
	ctx := &contract.Context{Override: contract.Override{Mutator: &contract.Mutator{
		Name: "customInstance", Path: "./mutator", HasSecondArg: true,
	}}}
	got := render(t, createPet(), ctx)

	assert.Contains(t, got, "export const useCreatePet = <TError = unknown>(\n"+
		"  options?: { swr?: SWRMutationConfiguration<Awaited<ReturnType<typeof createPet>>, TError, Key, Pet> & { swrKey?: Key; enabled?: boolean }; request?: SecondParameter<typeof customInstance> },\n"+
		") => {\n")
	assert.NotContains(t, got, "axios?:")
	assert.Contains(t, got, "  const { swr: swrOptions, request: requestOptions } = options ?? {};\n")
	assert.Contains(t, got, "  const swrFn = (_: Key, { arg }: { arg: Pet }) => createPet(arg, requestOptions);\n")
	assert.Contains(t, got, "  const query = useSWRMutation<Awaited<ReturnType<typeof swrFn>>, TError, Key, Pet>(swrKey, swrFn, swrOptions);\n")
	assert.Contains(t, got, "export type CreatePetMutationError = unknown;\n")
	assert.Contains(t, got, "export const getCreatePetKey = () => [`/pets`] as const;\n")
}

func TestClient_ErrorTypeWrapper(t *testing.T) {
	t.Parallel()
	ctx := &contract.Context{Override: contract.Override{Mutator: &contract.Mutator{
		Name: "customInstance", Path: "./mutator", HasErrorType: true,
	}}}
	op := createPet()
	op.Responses["400"] = &openapi3.Response{Content: openapi3.Content{"application/json": &openapi3.MediaType{
		Schema: &openapi3.SchemaRef{Ref: "#/components/schemas/Error", Value: openapi3.NewObjectSchema()},
	}}}
	got := render(t, op, ctx)
	assert.Contains(t, got, "<TError = ErrorType<Error>>")
	assert.Contains(t, got, "  options?: { swr?: SWRMutationConfiguration<Awaited<ReturnType<typeof createPet>>, TError, Key, Pet> & { swrKey?: Key; enabled?: boolean } },\n")
	assert.Contains(t, got, "  const { swr: swrOptions } = options ?? {};\n")
	assert.Contains(t, got, "createPet(arg);\n")
}

func TestClient_RequestOptionsDisabled(t *testing.T) {
	t.Parallel()
	off := false
	ctx := &contract.Context{Operations: map[string]contract.Override{"showPet": {RequestOptions: &off}}}
	got := render(t, showPet(), ctx)
	assert.Contains(t, got, "  swrOptions?: SWRConfiguration<Awaited<ReturnType<typeof showPet>>, TError> & { swrKey?: Key; enabled?: boolean },\n")
	assert.NotContains(t, got, "options ?? {}")
	assert.Contains(t, got, "  const swrFn = () => showPet(petId, params, headers);\n")
}

func TestClient_DefaultOptionsMerged(t *testing.T) {
	t.Parallel()
	ctx := &contract.Context{Override: contract.Override{SWR: contract.SWROverride{Options: map[string]any{
		"revalidateOnFocus": false,
		"dedupingInterval":  2000,
	}}}}
	got := render(t, showPet(), ctx)
	assert.Contains(t, got, `(swrKey, swrFn, { "dedupingInterval":2000,"revalidateOnFocus":false, ...swrOptions });`)
}

func TestClient_UnsupportedVerbRendersNoHook(t *testing.T) {
	t.Parallel()
	op := spec.Operation{Name: "headPets", Route: "/pets", Verb: spec.HEAD}
	ctx := &contract.Context{SyntheticDefaultImports: true}

	c, err := contract.Build(op, ctx)
	require.NoError(t, err)
	hook, err := Hook(c, ctx)
	require.NoError(t, err)
	assert.Empty(t, hook)

	swr, err := New().Client(c, ctx)
	require.NoError(t, err)
	assert.NotContains(t, swr.Implementation, "useSwr")
	assert.Contains(t, swr.Implementation, "axios.head(`/pets`, options)")

	plain, err := axiosemitter.New().Client(c, ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, plain.Implementation)
}

func TestDependencies_OmitAxiosWithGlobalMutator(t *testing.T) {
	t.Parallel()
	names := func(deps []emitter.Dependency) []string {
		var out []string
		for _, d := range deps {
			out = append(out, d.Dependency)
		}
		return out
	}
	p := New()
	assert.Equal(t, []string{"axios", "swr", "swr/mutation"}, names(p.Dependencies(false)))
	assert.Equal(t, []string{"swr", "swr/mutation"}, names(p.Dependencies(true)))

	assert.Equal(t, []string{"axios"}, names(axiosemitter.New().Dependencies(false)))
	assert.Empty(t, axiosemitter.New().Dependencies(true))
}

func TestDependencies_PerOperationMutatorKeepsAxios(t *testing.T) {
	t.Parallel()
	ctx := &contract.Context{Operations: map[string]contract.Override{
		"createPet": {Mutator: &contract.Mutator{Name: "customInstance", Path: "./mutator"}},
	}}
	c, err := contract.Build(createPet(), ctx)
	require.NoError(t, err)
	res, err := emitter.Emit(c, New(), ctx)
	require.NoError(t, err)
	require.NotEmpty(t, res.Dependencies)
	assert.Equal(t, "axios", res.Dependencies[0].Dependency)
}

func TestHeader(t *testing.T) {
	t.Parallel()
	p := New()
	full := p.Header(emitter.HeaderFlags{IsMutatorWithRequestOptions: true})
	assert.Contains(t, full, "type Awaited<O>")
	assert.Contains(t, full, "type SecondParameter<T extends (...args: any) => any>")

	assert.Empty(t, p.Header(emitter.HeaderFlags{HasAwaitedType: true}))
}
