package contract

import (
	"sort"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/mark3labs/oapi2client/internal/tstype"
)

// Location is where a parameter travels in the request.
type Location string

const (
	LocationPath   Location = openapi3.ParameterInPath
	LocationQuery  Location = openapi3.ParameterInQuery
	LocationHeader Location = openapi3.ParameterInHeader
	LocationCookie Location = openapi3.ParameterInCookie
)

func parseLocation(in string) (Location, bool) {
	switch l := Location(in); l {
	case LocationPath, LocationQuery, LocationHeader, LocationCookie:
		return l, true
	}
	return "", false
}

// SchemaSource tells which field of a parameter carried its schema.
type SchemaSource int

const (
	SourceSchema SchemaSource = iota + 1
	SourceContent
)

// SchemaLocation is the canonical view of a parameter's schema, whichever
// field it was declared in. Nothing downstream of LocateSchema looks at the
// raw schema/content fields again.
type SchemaLocation struct {
	Source    SchemaSource
	MediaType string // set for SourceContent
	Schema    *openapi3.SchemaRef
}

// LocateSchema picks the parameter's schema: the direct schema field when
// present, otherwise the first content entry by media type.
func LocateSchema(p *openapi3.Parameter) (SchemaLocation, error) {
	if p.Schema != nil {
		return SchemaLocation{Source: SourceSchema, Schema: p.Schema}, nil
	}
	if len(p.Content) > 0 {
		types := make([]string, 0, len(p.Content))
		for mt := range p.Content {
			types = append(types, mt)
		}
		sort.Strings(types)
		for _, mt := range types {
			if media := p.Content[mt]; media != nil && media.Schema != nil {
				return SchemaLocation{Source: SourceContent, MediaType: mt, Schema: media.Schema}, nil
			}
		}
	}
	return SchemaLocation{}, ErrMalformedParameter
}

// HasDefault reports whether the located schema declares a default value.
// Both sources go through the same check.
func (l SchemaLocation) HasDefault() bool { return tstype.HasDefault(l.Schema) }

// Param is a normalized parameter ready for emission.
type Param struct {
	Name        string
	In          Location
	Type        string
	Optional    bool
	Description string
	Imports     []tstype.ImportRef
}

// NormalizeParam resolves p's schema, decides optionality and synthesizes
// its type. A parameter is optional when it is not required or when its
// schema declares a default; only required-without-default is mandatory.
func NormalizeParam(p *openapi3.Parameter, ctx *Context) (Param, error) {
	loc, ok := parseLocation(p.In)
	if !ok {
		return Param{}, &ParamError{Name: p.Name, In: p.In, Err: ErrUnsupportedParameterLocation}
	}
	sl, err := LocateSchema(p)
	if err != nil {
		return Param{}, &ParamError{Name: p.Name, In: p.In, Err: err}
	}
	res, err := tstype.Resolve(sl.Schema, typeOptions(ctx))
	if err != nil {
		return Param{}, &ParamError{Name: p.Name, In: p.In, Err: err}
	}
	return Param{
		Name:        p.Name,
		In:          loc,
		Type:        res.Type,
		Optional:    !p.Required || sl.HasDefault(),
		Description: p.Description,
		Imports:     res.Imports,
	}, nil
}

func typeOptions(ctx *Context) tstype.Options {
	if ctx == nil {
		return tstype.Options{}
	}
	return tstype.Options{UseDates: ctx.UseDates}
}
