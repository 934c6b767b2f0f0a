package spec

import "github.com/getkin/kin-openapi/openapi3"

// Raw operation records handed to the contract builder.

type HttpMethod string

const (
	GET     HttpMethod = "get"
	POST    HttpMethod = "post"
	PUT     HttpMethod = "put"
	DELETE  HttpMethod = "delete"
	PATCH   HttpMethod = "patch"
	HEAD    HttpMethod = "head"
	OPTIONS HttpMethod = "options"
	TRACE   HttpMethod = "trace"
)

// Document is the set of operations collected from one API description plus
// the component schemas they may reference.
type Document struct {
	Title      string
	Version    string
	Operations []Operation
	Schemas    openapi3.Schemas
}

// Operation is one (route, verb) pair with its parameters already merged
// across the path item and the operation. Parameters keep declaration order:
// path-level first, then operation-level, with operation-level entries
// replacing path-level ones in place.
type Operation struct {
	Name        string // camelCase operation name used for generated identifiers
	OperationID string
	Route       string
	Verb        HttpMethod
	Summary     string
	Tags        []string
	Deprecated  bool
	Parameters  []*openapi3.Parameter
	RequestBody *openapi3.RequestBody
	Responses   map[string]*openapi3.Response
}
