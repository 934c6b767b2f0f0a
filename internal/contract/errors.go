package contract

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedParameter means a parameter has neither schema nor content.
	ErrMalformedParameter = errors.New("parameter has neither schema nor content")
	// ErrUnsupportedParameterLocation means a parameter is not in path, query,
	// header or cookie.
	ErrUnsupportedParameterLocation = errors.New("unsupported parameter location")
	// ErrUnsupportedVerb means an operation's verb is neither a query (GET)
	// nor a mutation (POST, PUT, PATCH, DELETE).
	ErrUnsupportedVerb = errors.New("unsupported verb")
)

// OperationError ties a normalization failure to the operation it came from.
type OperationError struct {
	Operation string
	Verb      string
	Route     string
	Err       error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("operation %s (%s %s): %v", e.Operation, e.Verb, e.Route, e.Err)
}

func (e *OperationError) Unwrap() error { return e.Err }

// ParamError names the parameter that failed to normalize.
type ParamError struct {
	Name string
	In   string
	Err  error
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("parameter %q in %s: %v", e.Name, e.In, e.Err)
}

func (e *ParamError) Unwrap() error { return e.Err }
