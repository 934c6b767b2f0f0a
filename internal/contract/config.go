package contract

import (
	"sort"
	"strings"

	"github.com/mark3labs/oapi2client/internal/spec"
)

// Mutator is a caller-supplied transport function that replaces the default
// HTTP client for the operations it is bound to.
type Mutator struct {
	Name string `yaml:"name"`
	// Path is the module specifier the generated file imports the mutator from.
	Path    string `yaml:"path"`
	Default bool   `yaml:"default"`
	// HasSecondArg means the mutator accepts a request-options argument whose
	// type is threaded into generated signatures as SecondParameter<typeof Name>.
	HasSecondArg bool `yaml:"hasSecondArg"`
	// HasErrorType means the mutator module exports ErrorType<E>.
	HasErrorType bool `yaml:"hasErrorType"`
	// BodyTypeName is a generic wrapper applied to body types, e.g. BodyType.
	BodyTypeName string `yaml:"bodyTypeName"`
}

// SWROverride carries options for the swr flavor.
type SWROverride struct {
	// Options are default hook options merged under caller options.
	Options map[string]any `yaml:"options"`
}

// Override holds the per-operation knobs. Nil pointers mean "not set", which
// resolves to enabled for every boolean feature.
type Override struct {
	RequestOptions *bool       `yaml:"requestOptions"`
	FormData       *bool       `yaml:"formData"`
	FormURLEncoded *bool       `yaml:"formUrlEncoded"`
	Mutator        *Mutator    `yaml:"mutator"`
	SWR            SWROverride `yaml:"swr"`
}

func (o Override) RequestOptionsEnabled() bool { return enabled(o.RequestOptions) }
func (o Override) FormDataEnabled() bool       { return enabled(o.FormData) }
func (o Override) FormURLEncodedEnabled() bool { return enabled(o.FormURLEncoded) }

func enabled(b *bool) bool { return b == nil || *b }

// merge returns o with every field set in other taking precedence.
func (o Override) merge(other Override) Override {
	if other.RequestOptions != nil {
		o.RequestOptions = other.RequestOptions
	}
	if other.FormData != nil {
		o.FormData = other.FormData
	}
	if other.FormURLEncoded != nil {
		o.FormURLEncoded = other.FormURLEncoded
	}
	if other.Mutator != nil {
		o.Mutator = other.Mutator
	}
	if other.SWR.Options != nil {
		o.SWR = other.SWR
	}
	return o
}

// Context is the generation configuration passed explicitly to every
// normalizer, the contract builder, and each emission plugin.
type Context struct {
	// Override applies to every operation.
	Override Override
	// Operations holds per-operation overrides keyed by operationId or
	// generated operation name. Keys match case-insensitively.
	Operations map[string]Override
	// UseDates represents date and date-time strings as Date.
	UseDates bool
	// SyntheticDefaultImports allows `import axios from 'axios'` style imports
	// for packages without a real default export.
	SyntheticDefaultImports bool
	// HasAwaitedType means the target already provides the Awaited helper.
	HasAwaitedType bool
	// Aliases maps dependency exports to the local name they are imported
	// under when a generated model already uses the export's name.
	Aliases map[string]string
}

// Ident returns the local identifier for the dependency export name.
func (c *Context) Ident(name string) string {
	if c != nil {
		if alias, ok := c.Aliases[name]; ok {
			return alias
		}
	}
	return name
}

// HasGlobalMutator reports whether a mutator is configured for every operation.
func (c *Context) HasGlobalMutator() bool {
	return c != nil && c.Override.Mutator != nil
}

// OverrideFor resolves the effective override for op: the global override
// with any per-operation entry layered on top. An exact key wins over a
// case-insensitive one; among case-insensitive matches the smallest key wins.
func (c *Context) OverrideFor(op spec.Operation) Override {
	if c == nil {
		return Override{}
	}
	for _, want := range []string{op.OperationID, op.Name} {
		if want == "" {
			continue
		}
		if o, ok := c.Operations[want]; ok {
			return c.Override.merge(o)
		}
	}
	keys := make([]string, 0, len(c.Operations))
	for key := range c.Operations {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, want := range []string{op.OperationID, op.Name} {
		if want == "" {
			continue
		}
		for _, key := range keys {
			if strings.EqualFold(key, want) {
				return c.Override.merge(c.Operations[key])
			}
		}
	}
	return c.Override
}
