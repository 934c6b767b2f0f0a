package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/oapi2client/internal/output"
	"github.com/mark3labs/oapi2client/internal/spec"
)

// ErrUsage marks errors caused by bad input rather than a generator fault.
var ErrUsage = errors.New("cli usage error")

type usageError struct {
	msg string
}

func newUsageError(msg string) error {
	return usageError{msg: msg}
}

func (e usageError) Error() string {
	return e.msg
}

func (e usageError) Is(target error) bool {
	return target == ErrUsage
}

// describeSpecError maps structured loader errors into usage errors with the
// location and JSON pointer on their own lines.
func describeSpecError(err error) error {
	var se *spec.SpecError
	if !errors.As(err, &se) {
		return err
	}
	msg := se.Message
	if !strings.HasPrefix(msg, "spec:") {
		msg = "spec: " + msg
	}
	if se.Location != "" {
		msg = fmt.Sprintf("%s\nLocation: %s", msg, se.Location)
	}
	if se.JSONPointer != "" {
		msg = fmt.Sprintf("%s\nPointer: %s", msg, se.JSONPointer)
	}
	return newUsageError(msg)
}

func wrapOutputError(err error, target string) error {
	if errors.Is(err, output.ErrExists) {
		return newUsageError(err.Error())
	}
	lower := strings.ToLower(err.Error())
	if strings.Contains(lower, "permission") || strings.Contains(lower, "read-only") || strings.Contains(lower, "mkdir") || strings.Contains(lower, "rename") {
		return newUsageError(fmt.Sprintf("output error for %s: %v\nHint: choose a different --target or check directory permissions.", target, err))
	}
	return err
}
