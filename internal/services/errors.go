package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUpstream      = errors.New("upstream data error")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrPersistence   = errors.New("persistence error")
	ErrTransient     = errors.New("transient failure")
)

// Exit codes follow sysexits(3) so wrapper scripts can tell bad input from
// broken configuration.
const (
	ExitFailure = 1
	ExitDataErr = 65
	ExitNoInput = 66
	ExitConfig  = 78
)

// StageError carries the pipeline stage and operation that produced a failure.
type StageError struct {
	Marker    error
	Stage     string
	Operation string
	Message   string
	Err       error
}

func (e *StageError) Error() string {
	detail := buildDetail(e.Stage, e.Operation, e.Message)
	if e.Err != nil {
		return fmt.Sprintf("%v: %s: %v", e.Marker, detail, e.Err)
	}
	return fmt.Sprintf("%v: %s", e.Marker, detail)
}

func (e *StageError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Marker}
	}
	return []error{e.Marker, e.Err}
}

// Wrap builds an error that includes stage context while tagging it with the
// provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	if marker == nil {
		marker = ErrTransient
	}
	return &StageError{
		Marker:    marker,
		Stage:     strings.TrimSpace(stage),
		Operation: strings.TrimSpace(operation),
		Message:   strings.TrimSpace(message),
		Err:       err,
	}
}

// FailureStage reports the innermost stage recorded on err, if any.
func FailureStage(err error) (string, bool) {
	var stageErr *StageError
	if !errors.As(err, &stageErr) || stageErr.Stage == "" {
		return "", false
	}
	return stageErr.Stage, true
}

// ExitCode maps an error to the process exit status used by the CLI.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrConfiguration):
		return ExitConfig
	case errors.Is(err, ErrNotFound):
		return ExitNoInput
	case errors.Is(err, ErrValidation), errors.Is(err, ErrUpstream):
		return ExitDataErr
	default:
		return ExitFailure
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage != "" {
		parts = append(parts, stage)
	}
	if operation != "" {
		parts = append(parts, operation)
	}
	if message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "pipeline failure"
	}
	return strings.Join(parts, ": ")
}
