package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureConfig runs the root command with args and returns the resolved
// generate config instead of generating.
func captureConfig(t *testing.T, args ...string) (*GenerateConfig, error) {
	t.Helper()
	var captured *GenerateConfig
	generateRunner = func(ctx context.Context, cfg *GenerateConfig) error {
		captured = cfg
		return nil
	}
	t.Cleanup(func() { generateRunner = runGenerate })

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return captured, err
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "oapi2client.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestGenerateConfigFromFlags(t *testing.T) {
	cfg, err := captureConfig(t,
		"--verbose",
		"generate",
		"--input", "openapi.yaml",
		"--target", "src/api/client.ts",
		"--schemas", "src/api/model/index.ts",
		"--client", "AXIOS",
		"--include-tags", "foo,bar",
		"--exclude-tags", "baz",
		"--synthetic-default-imports=false",
		"--has-awaited-type",
		"--dry-run",
		"--force",
	)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "openapi.yaml", cfg.Input)
	assert.Equal(t, "src/api/client.ts", cfg.Target)
	assert.Equal(t, "src/api/model/index.ts", cfg.Schemas)
	assert.Equal(t, "axios", cfg.Client)
	assert.Equal(t, []string{"foo", "bar"}, cfg.IncludeTags)
	assert.Equal(t, []string{"baz"}, cfg.ExcludeTags)
	assert.False(t, cfg.SyntheticDefaultImports)
	assert.True(t, cfg.HasAwaitedType)
	assert.True(t, cfg.DryRun)
	assert.True(t, cfg.Force)
	assert.True(t, cfg.Verbose)
	assert.False(t, cfg.Watch)
}

func TestGenerateConfigDefaults(t *testing.T) {
	cfg, err := captureConfig(t, "generate", "--input", "openapi.yaml")
	require.NoError(t, err)
	assert.Equal(t, "swr", cfg.Client)
	assert.True(t, cfg.SyntheticDefaultImports)
	assert.Empty(t, cfg.Target)
	assert.Nil(t, cfg.IncludeTags)

	ctx := cfg.Context()
	assert.True(t, ctx.SyntheticDefaultImports)
	assert.False(t, ctx.HasGlobalMutator())
}

func TestGenerateConfigPrecedence(t *testing.T) {
	path := writeConfig(t, `input: config.yaml
target: from-config.ts
client: axios
includeTags:
  - cfgFoo
excludeTags: cfgBar,cfgBaz
dryRun: true
force: false
verbose: true
`)
	t.Setenv("OAPI2CLIENT_TARGET", "from-env.ts")
	t.Setenv("OAPI2CLIENT_FORCE", "true")

	cfg, err := captureConfig(t,
		"--config", path,
		"generate",
		"--input", "flag.yaml",
		"--include-tags", "flagTag",
		"--dry-run=false",
	)
	require.NoError(t, err)

	assert.Equal(t, path, cfg.ConfigPath)
	assert.Equal(t, "flag.yaml", cfg.Input, "flag beats config")
	assert.Equal(t, "from-env.ts", cfg.Target, "env beats config")
	assert.Equal(t, "axios", cfg.Client, "config beats flag default")
	assert.Equal(t, []string{"flagTag"}, cfg.IncludeTags)
	assert.Equal(t, []string{"cfgBar", "cfgBaz"}, cfg.ExcludeTags)
	assert.False(t, cfg.DryRun)
	assert.True(t, cfg.Force)
	assert.True(t, cfg.Verbose)
}

func TestGenerateConfigFromEnv(t *testing.T) {
	t.Setenv("OAPI2CLIENT_INPUT", "env.yaml")
	t.Setenv("OAPI2CLIENT_INCLUDETAGS", "a, b")
	t.Setenv("OAPI2CLIENT_SYNTHETICDEFAULTIMPORTS", "false")

	cfg, err := captureConfig(t, "generate")
	require.NoError(t, err)
	assert.Equal(t, "env.yaml", cfg.Input)
	assert.Equal(t, []string{"a", "b"}, cfg.IncludeTags)
	assert.False(t, cfg.SyntheticDefaultImports)
}

func TestGenerateConfigOverrideBlock(t *testing.T) {
	path := writeConfig(t, `input: openapi.yaml
override:
  useDates: true
  requestOptions: false
  mutator:
    name: customInstance
    path: ./custom-instance
    hasSecondArg: true
    hasErrorType: true
    bodyTypeName: BodyType
  swr:
    options:
      revalidateOnFocus: false
  operations:
    listPets:
      requestOptions: true
      formData: false
`)
	cfg, err := captureConfig(t, "--config", path, "generate")
	require.NoError(t, err)

	ov := cfg.Override
	assert.True(t, ov.UseDates)
	require.NotNil(t, ov.RequestOptions)
	assert.False(t, *ov.RequestOptions)
	require.NotNil(t, ov.Mutator)
	assert.Equal(t, "customInstance", ov.Mutator.Name)
	assert.Equal(t, "./custom-instance", ov.Mutator.Path)
	assert.True(t, ov.Mutator.HasSecondArg)
	assert.True(t, ov.Mutator.HasErrorType)
	assert.Equal(t, "BodyType", ov.Mutator.BodyTypeName)
	assert.Equal(t, map[string]any{"revalidateOnFocus": false}, ov.SWR.Options)

	require.Contains(t, ov.Operations, "listPets")
	op := ov.Operations["listPets"]
	require.NotNil(t, op.RequestOptions)
	assert.True(t, *op.RequestOptions)
	require.NotNil(t, op.FormData)
	assert.False(t, *op.FormData)

	ctx := cfg.Context()
	assert.True(t, ctx.UseDates)
	assert.True(t, ctx.HasGlobalMutator())
}

func TestGenerateConfigErrors(t *testing.T) {
	tests := []struct {
		name   string
		config string
		args   []string
		want   string
	}{
		{name: "missing input", args: []string{"generate"}, want: "--input is required"},
		{name: "unsupported client", args: []string{"generate", "--input", "a.yaml", "--client", "fetch"}, want: `unsupported --client "fetch" (allowed: axios, swr)`},
		{name: "tag overlap", args: []string{"generate", "--input", "a.yaml", "--include-tags", "x,y", "--exclude-tags", "y"}, want: "overlap: y"},
		{name: "schemas equals target", args: []string{"generate", "--input", "a.yaml", "--target", "api.ts", "--schemas", "./api.ts"}, want: "--schemas must differ"},
		{name: "watch remote", args: []string{"generate", "--input", "https://example.com/openapi.yaml", "--watch"}, want: "--watch needs a local input file"},
		{name: "unknown top-level key", config: "input: a.yaml\nlang: go\n", want: `unknown field "lang"`},
		{name: "unknown override key", config: "input: a.yaml\noverride:\n  mutatr: {}\n", want: "field mutatr not found"},
		{name: "mutator without path", config: "input: a.yaml\noverride:\n  mutator:\n    name: customInstance\n", want: "override.mutator: name and path are required"},
		{name: "operation mutator without name", config: "input: a.yaml\noverride:\n  operations:\n    listPets:\n      mutator:\n        path: ./m\n", want: "override.operations.listPets.mutator"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := tt.args
			if tt.config != "" {
				args = append([]string{"--config", writeConfig(t, tt.config), "generate"}, args...)
			}
			cfg, err := captureConfig(t, args...)
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.ErrorIs(t, err, ErrUsage)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestGenerateConfigMissingFile(t *testing.T) {
	_, err := captureConfig(t, "--config", filepath.Join(t.TempDir(), "nope.yaml"), "generate")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUsage)
	assert.Contains(t, err.Error(), "read config file")
}

func TestUnknownFlag_ShowsHelpAndUsageError(t *testing.T) {
	_, err := captureConfig(t, "generate", "--unknown-flag")
	require.Error(t, err)
	assert.IsType(t, usageError{}, err)
	assert.Contains(t, err.Error(), "unknown flag")
	assert.Contains(t, err.Error(), "Usage:")
}

func TestDeriveTarget(t *testing.T) {
	tests := map[string]string{
		"Swagger Petstore":  "swagger-petstore.ts",
		"Pets API v1.2":     "pets-api-v1-2.ts",
		"  ":                "client.ts",
		"Ünïcode/Service_X": "ncode-service-x.ts",
	}
	for title, want := range tests {
		assert.Equal(t, want, deriveTarget(&openapi3.T{Info: &openapi3.Info{Title: title}}), title)
	}
	assert.Equal(t, "client.ts", deriveTarget(&openapi3.T{}))
}

func TestSplitListAndSanitize(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, splitList([]string{"a, b", "", "c"}))
	assert.Equal(t, []string{"a", "b"}, sanitizeTags([]string{" a", "b", "a", ""}))
	assert.Nil(t, sanitizeTags([]string{" "}))
	assert.Equal(t, []string{"b"}, intersect([]string{"a", "b"}, []string{"b", "c"}))
}
