package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mark3labs/oapi2client/internal/contract"
)

// EnvPrefix prefixes every environment variable the CLI reads, e.g.
// OAPI2CLIENT_INPUT or OAPI2CLIENT_INCLUDETAGS.
const EnvPrefix = "OAPI2CLIENT"

// OverrideConfig is the `override` block of the config file. Its keys are
// case-sensitive (operation ids, SWR option names), so it is decoded with
// yaml.v3 directly rather than through viper.
type OverrideConfig struct {
	contract.Override `yaml:",inline"`
	UseDates          bool                         `yaml:"useDates"`
	Operations        map[string]contract.Override `yaml:"operations"`
}

// GenerateConfig captures all inputs that influence the generate command after
// merging defaults, config file values, environment and CLI flags.
type GenerateConfig struct {
	Input                   string
	Target                  string
	Schemas                 string
	Client                  string
	IncludeTags             []string
	ExcludeTags             []string
	ConfigPath              string
	DryRun                  bool
	Force                   bool
	Verbose                 bool
	Watch                   bool
	SyntheticDefaultImports bool
	HasAwaitedType          bool
	Override                OverrideConfig
}

// Context turns the resolved configuration into the generation context.
func (c *GenerateConfig) Context() *contract.Context {
	return &contract.Context{
		Override:                c.Override.Override,
		Operations:              c.Override.Operations,
		UseDates:                c.Override.UseDates,
		SyntheticDefaultImports: c.SyntheticDefaultImports,
		HasAwaitedType:          c.HasAwaitedType,
	}
}

// configKeys maps lower-cased config keys to the flags that override them.
var configKeys = map[string]string{
	"input":                   "input",
	"target":                  "target",
	"schemas":                 "schemas",
	"client":                  "client",
	"includetags":             "include-tags",
	"excludetags":             "exclude-tags",
	"dryrun":                  "dry-run",
	"force":                   "force",
	"verbose":                 "verbose",
	"watch":                   "watch",
	"syntheticdefaultimports": "synthetic-default-imports",
	"hasawaitedtype":          "has-awaited-type",
}

const overrideKey = "override"

// loadGenerateConfig resolves configuration with precedence
// flag > environment > config file > flag default.
func loadGenerateConfig(flags *pflag.FlagSet, configPath string) (*GenerateConfig, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	cfg := &GenerateConfig{ConfigPath: configPath}
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, newUsageError(fmt.Sprintf("read config file %q: %v", configPath, err))
		}
		if err := checkConfigKeys(data, configPath); err != nil {
			return nil, err
		}
		override, err := decodeOverride(data)
		if err != nil {
			return nil, newUsageError(fmt.Sprintf("config file %q: override: %v", configPath, err))
		}
		cfg.Override = override

		v.SetConfigFile(configPath)
		switch strings.ToLower(filepath.Ext(configPath)) {
		case ".yaml", ".yml", ".json":
		default:
			v.SetConfigType("yaml")
		}
		if err := v.ReadInConfig(); err != nil {
			return nil, newUsageError(fmt.Sprintf("parse config file %q: %v", configPath, err))
		}
	}

	for key, flag := range configKeys {
		if f := flags.Lookup(flag); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, err
			}
		}
	}

	cfg.Input = v.GetString("input")
	cfg.Target = v.GetString("target")
	cfg.Schemas = v.GetString("schemas")
	cfg.Client = v.GetString("client")
	cfg.IncludeTags = splitList(v.GetStringSlice("includetags"))
	cfg.ExcludeTags = splitList(v.GetStringSlice("excludetags"))
	cfg.DryRun = v.GetBool("dryrun")
	cfg.Force = v.GetBool("force")
	cfg.Verbose = v.GetBool("verbose")
	cfg.Watch = v.GetBool("watch")
	cfg.SyntheticDefaultImports = v.GetBool("syntheticdefaultimports")
	cfg.HasAwaitedType = v.GetBool("hasawaitedtype")

	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// checkConfigKeys rejects top-level keys the CLI does not know.
func checkConfigKeys(data []byte, path string) error {
	var raw map[string]yaml.Node
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return newUsageError(fmt.Sprintf("parse config file %q: %v", path, err))
	}
	var unknown []string
	for key := range raw {
		n := strings.ToLower(strings.TrimSpace(key))
		if _, ok := configKeys[n]; ok || n == overrideKey {
			continue
		}
		unknown = append(unknown, key)
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return newUsageError(fmt.Sprintf("config file %q: unknown field %q", path, unknown[0]))
	}
	return nil
}

// decodeOverride strictly decodes the override block of a config document.
func decodeOverride(data []byte) (OverrideConfig, error) {
	var doc struct {
		Override yaml.Node `yaml:"override"`
	}
	var out OverrideConfig
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return out, err
	}
	if doc.Override.Kind == 0 {
		return out, nil
	}
	raw, err := yaml.Marshal(&doc.Override)
	if err != nil {
		return out, err
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&out); err != nil {
		return out, err
	}
	return out, nil
}

func (c *GenerateConfig) normalize() {
	c.Input = strings.TrimSpace(c.Input)
	c.Target = strings.TrimSpace(c.Target)
	c.Schemas = strings.TrimSpace(c.Schemas)
	c.Client = strings.ToLower(strings.TrimSpace(c.Client))
	c.IncludeTags = sanitizeTags(c.IncludeTags)
	c.ExcludeTags = sanitizeTags(c.ExcludeTags)
}

func (c *GenerateConfig) validate() error {
	if c.Input == "" {
		return newUsageError("generate: --input is required (set via flag, config file or " + EnvPrefix + "_INPUT)")
	}
	if c.Client == "" {
		c.Client = defaultClient
	}
	if !knownClient(c.Client) {
		return newUsageError(fmt.Sprintf("generate: unsupported --client %q (allowed: %s)", c.Client, strings.Join(clientNames(), ", ")))
	}
	if overlap := intersect(c.IncludeTags, c.ExcludeTags); len(overlap) > 0 {
		return newUsageError(fmt.Sprintf("generate: include/exclude tags overlap: %s", strings.Join(overlap, ", ")))
	}
	if c.Schemas != "" && c.Target != "" && filepath.Clean(c.Schemas) == filepath.Clean(c.Target) {
		return newUsageError("generate: --schemas must differ from --target")
	}
	if err := validateMutator("override.mutator", c.Override.Mutator); err != nil {
		return err
	}
	for id, o := range c.Override.Operations {
		if err := validateMutator("override.operations."+id+".mutator", o.Mutator); err != nil {
			return err
		}
	}
	if c.Watch && isRemote(c.Input) {
		return newUsageError("generate: --watch needs a local input file")
	}
	return nil
}

func validateMutator(field string, m *contract.Mutator) error {
	if m == nil {
		return nil
	}
	if strings.TrimSpace(m.Name) == "" || strings.TrimSpace(m.Path) == "" {
		return newUsageError(fmt.Sprintf("config field %s: name and path are required", field))
	}
	return nil
}

func isRemote(input string) bool {
	lower := strings.ToLower(input)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// splitList accepts list values and comma-separated strings alike.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

func sanitizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	result := make([]string, 0, len(tags))
	for _, tag := range tags {
		trimmed := strings.TrimSpace(tag)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

func intersect(a, b []string) []string {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(a))
	for _, item := range a {
		set[item] = struct{}{}
	}
	var result []string
	for _, item := range b {
		if _, ok := set[item]; ok {
			result = append(result, item)
		}
	}
	return result
}
