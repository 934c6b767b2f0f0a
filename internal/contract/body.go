package contract

import (
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/mark3labs/oapi2client/internal/naming"
	"github.com/mark3labs/oapi2client/internal/tstype"
)

const (
	MediaJSON           = "application/json"
	MediaFormData       = "multipart/form-data"
	MediaFormURLEncoded = "application/x-www-form-urlencoded"
)

// Body describes an operation's request body.
type Body struct {
	Name             string // argument name in generated signatures
	Type             string
	MediaType        string
	Required         bool
	IsFormData       bool
	IsFormURLEncoded bool
	Imports          []tstype.ImportRef
}

// Response describes an operation's success and error payload types.
type Response struct {
	Success     string
	Error       string
	ContentType string
	Imports     []tstype.ImportRef
}

// NormalizeBody derives the body descriptor for an operation named opName.
// It returns nil when the operation has no body. Inline object bodies are
// hoisted into a named model declaration, returned alongside.
func NormalizeBody(rb *openapi3.RequestBody, opName string, o Override, ctx *Context) (*Body, *tstype.Declaration, error) {
	if rb == nil || len(rb.Content) == 0 {
		return nil, nil, nil
	}
	mt, media := pickMedia(rb.Content)
	if media == nil || media.Schema == nil {
		return nil, nil, nil
	}
	res, err := tstype.Resolve(media.Schema, typeOptions(ctx))
	if err != nil {
		return nil, nil, err
	}

	body := &Body{
		Type:      res.Type,
		MediaType: mt,
		Required:  rb.Required,
		Imports:   res.Imports,
	}
	// Disabled form handling falls through to a plain typed body.
	switch base := mediaBase(mt); {
	case base == MediaFormData && o.FormDataEnabled():
		body.IsFormData = true
	case base == MediaFormURLEncoded && o.FormURLEncodedEnabled():
		body.IsFormURLEncoded = true
	}

	var model *tstype.Declaration
	if strings.HasPrefix(res.Type, "{") {
		name := naming.Pascal(opName + " body")
		decl, err := tstype.Declare(name, media.Schema, typeOptions(ctx))
		if err != nil {
			return nil, nil, err
		}
		model = &decl
		body.Type = decl.Name
	}
	body.Name = bodyArgName(body.Type, opName)
	return body, model, nil
}

// NormalizeResponse derives success and error types. The success type is the
// first 2xx response (by status code) that carries a schema; the error type
// is the union of every other response's schema. Each side falls back to
// unknown on its own.
func NormalizeResponse(responses map[string]*openapi3.Response, ctx *Context) (Response, error) {
	codes := make([]string, 0, len(responses))
	for code := range responses {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	var (
		out     = Response{Success: tstype.Unknown, Error: tstype.Unknown}
		imports tstype.ImportSet
		errs    []string
		seen    = map[string]bool{}
		success bool
	)
	for _, code := range codes {
		resp := responses[code]
		if resp == nil || len(resp.Content) == 0 {
			continue
		}
		mt, media := pickMedia(resp.Content)
		if media == nil || media.Schema == nil {
			continue
		}
		res, err := tstype.Resolve(media.Schema, typeOptions(ctx))
		if err != nil {
			return Response{}, err
		}
		if isSuccess(code) {
			if !success {
				success = true
				out.Success = res.Type
				out.ContentType = mt
				imports.Add(res.Imports...)
			}
			continue
		}
		imports.Add(res.Imports...)
		if !seen[res.Type] {
			seen[res.Type] = true
			errs = append(errs, res.Type)
		}
	}
	if len(errs) > 0 {
		out.Error = strings.Join(errs, " | ")
	}
	out.Imports = imports.Refs()
	return out, nil
}

func isSuccess(code string) bool {
	return len(code) == 3 && code[0] == '2'
}

// pickMedia prefers JSON, then form encodings, then the first media type in
// sorted order.
func pickMedia(content openapi3.Content) (string, *openapi3.MediaType) {
	types := make([]string, 0, len(content))
	for mt := range content {
		types = append(types, mt)
	}
	sort.Strings(types)
	rank := func(mt string) int {
		switch base := mediaBase(mt); {
		case base == MediaJSON || strings.HasSuffix(base, "+json"):
			return 0
		case base == MediaFormData:
			return 1
		case base == MediaFormURLEncoded:
			return 2
		}
		return 3
	}
	sort.SliceStable(types, func(i, j int) bool { return rank(types[i]) < rank(types[j]) })
	for _, mt := range types {
		if m := content[mt]; m != nil {
			return mt, m
		}
	}
	return "", nil
}

func mediaBase(mt string) string {
	base, _, _ := strings.Cut(mt, ";")
	return strings.ToLower(strings.TrimSpace(base))
}

func bodyArgName(typeExpr, opName string) string {
	if naming.IsIdentifier(typeExpr) && !builtinTypes[typeExpr] {
		return naming.Camel(typeExpr)
	}
	return naming.Camel(opName + " body")
}

var builtinTypes = map[string]bool{
	"string": true, "number": true, "boolean": true, "unknown": true,
	"Blob": true, "Date": true, "null": true,
}
