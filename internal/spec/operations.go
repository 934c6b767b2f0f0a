package spec

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/mark3labs/oapi2client/internal/naming"
)

// BuildOption configures which operations Collect keeps.
type BuildOption func(*buildConfig)

type buildConfig struct {
	includeTags map[string]struct{}
	excludeTags map[string]struct{}
	methods     map[HttpMethod]struct{}
	pathRes     []*regexp.Regexp
}

// WithIncludeTags keeps only operations that have at least one of the given tags.
func WithIncludeTags(tags []string) BuildOption {
	return func(c *buildConfig) {
		for _, t := range tags {
			t = strings.TrimSpace(t)
			if t == "" {
				continue
			}
			if c.includeTags == nil {
				c.includeTags = make(map[string]struct{}, len(tags))
			}
			c.includeTags[t] = struct{}{}
		}
	}
}

// WithExcludeTags removes operations that have any of the given tags.
func WithExcludeTags(tags []string) BuildOption {
	return func(c *buildConfig) {
		for _, t := range tags {
			t = strings.TrimSpace(t)
			if t == "" {
				continue
			}
			if c.excludeTags == nil {
				c.excludeTags = make(map[string]struct{}, len(tags))
			}
			c.excludeTags[t] = struct{}{}
		}
	}
}

// WithMethods keeps only operations using one of the provided HTTP methods.
func WithMethods(methods []HttpMethod) BuildOption {
	return func(c *buildConfig) {
		if len(methods) == 0 {
			return
		}
		if c.methods == nil {
			c.methods = make(map[HttpMethod]struct{}, len(methods))
		}
		for _, m := range methods {
			c.methods[HttpMethod(strings.ToLower(string(m)))] = struct{}{}
		}
	}
}

// WithPathPatterns keeps only operations whose route matches at least one of
// the provided regular expressions. Invalid patterns never match.
func WithPathPatterns(patterns []string) BuildOption {
	return func(c *buildConfig) {
		for _, p := range patterns {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			re, err := regexp.Compile(p)
			if err != nil {
				re = regexp.MustCompile("a^$")
			}
			c.pathRes = append(c.pathRes, re)
		}
	}
}

// Collect flattens an OpenAPI v3 document into one Operation per (route, verb)
// pair. Routes are visited in sorted order and verbs in a fixed order so the
// result is deterministic.
func Collect(ctx context.Context, doc *openapi3.T, opts ...BuildOption) (*Document, error) {
	if doc == nil {
		return nil, fmt.Errorf("nil document")
	}

	cfg := &buildConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	out := &Document{}
	if doc.Info != nil {
		out.Title = safeStr(doc.Info.Title)
		out.Version = safeStr(doc.Info.Version)
	}
	if doc.Components != nil {
		out.Schemas = doc.Components.Schemas
	}
	if doc.Paths == nil {
		return out, nil
	}

	routes := make([]string, 0, len(doc.Paths))
	for p := range doc.Paths {
		routes = append(routes, p)
	}
	sort.Strings(routes)

	for _, route := range routes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		item := doc.Paths[route]
		if item == nil {
			continue
		}
		ops := []struct {
			m HttpMethod
			o *openapi3.Operation
		}{
			{GET, item.Get},
			{POST, item.Post},
			{PUT, item.Put},
			{DELETE, item.Delete},
			{PATCH, item.Patch},
			{HEAD, item.Head},
			{OPTIONS, item.Options},
			{TRACE, item.Trace},
		}
		for _, pair := range ops {
			if pair.o == nil || !cfg.allows(pair.m, route, pair.o.Tags) {
				continue
			}
			out.Operations = append(out.Operations, toOperation(route, pair.m, item.Parameters, pair.o))
		}
	}
	return out, nil
}

func (c *buildConfig) allows(m HttpMethod, route string, tags []string) bool {
	if len(c.methods) > 0 {
		if _, ok := c.methods[m]; !ok {
			return false
		}
	}
	if len(c.pathRes) > 0 {
		matched := false
		for _, re := range c.pathRes {
			if re.MatchString(route) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return allowByTags(tags, c)
}

func toOperation(route string, m HttpMethod, base openapi3.Parameters, o *openapi3.Operation) Operation {
	op := Operation{
		OperationID: safeStr(o.OperationID),
		Route:       route,
		Verb:        m,
		Summary:     safeStr(o.Summary),
		Deprecated:  o.Deprecated,
		Parameters:  mergeParameters(base, o.Parameters),
	}
	op.Name = OperationName(op.OperationID, m, route)
	for _, t := range o.Tags {
		if t = strings.TrimSpace(t); t != "" {
			op.Tags = append(op.Tags, t)
		}
	}
	if o.RequestBody != nil {
		op.RequestBody = o.RequestBody.Value
	}
	if len(o.Responses) > 0 {
		op.Responses = make(map[string]*openapi3.Response, len(o.Responses))
		for code, ref := range o.Responses {
			if ref == nil || ref.Value == nil {
				continue
			}
			op.Responses[code] = ref.Value
		}
	}
	return op
}

// mergeParameters keeps declaration order: path-level parameters first, then
// operation-level ones. An operation-level parameter with the same (in, name)
// replaces the path-level entry at its original position.
func mergeParameters(base, own openapi3.Parameters) []*openapi3.Parameter {
	var out []*openapi3.Parameter
	index := make(map[string]int)
	add := func(refs openapi3.Parameters) {
		for _, ref := range refs {
			if ref == nil || ref.Value == nil {
				continue
			}
			key := paramKey(ref.Value.In, ref.Value.Name)
			if i, ok := index[key]; ok {
				out[i] = ref.Value
				continue
			}
			index[key] = len(out)
			out = append(out, ref.Value)
		}
	}
	add(base)
	add(own)
	return out
}

// OperationName derives the identifier used for generated functions: the
// camelCased operationId, or the verb followed by the route's words.
func OperationName(operationID string, m HttpMethod, route string) string {
	if name := naming.Camel(operationID); name != "" {
		return name
	}
	return naming.Camel(string(m) + " " + route)
}

func allowByTags(tags []string, cfg *buildConfig) bool {
	if len(cfg.includeTags) > 0 {
		ok := false
		for _, t := range tags {
			if _, yes := cfg.includeTags[t]; yes {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	for _, t := range tags {
		if _, blocked := cfg.excludeTags[t]; blocked {
			return false
		}
	}
	return true
}

func paramKey(in, name string) string { return in + ":" + name }

func safeStr(s string) string { return strings.TrimSpace(s) }
