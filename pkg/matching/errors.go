package matching

import "fmt"

// InputError reports unusable input records, such as empty lists or entries
// with no text content.
type InputError struct {
	Msg string
}

func (e *InputError) Error() string {
	return e.Msg
}

// NewInputError builds an InputError from a format string
func NewInputError(format string, args ...any) *InputError {
	return &InputError{Msg: fmt.Sprintf(format, args...)}
}

// ConfigurationError reports an invalid run configuration, such as an unknown
// method or an out-of-range threshold.
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string {
	return e.Msg
}

// NewConfigurationError builds a ConfigurationError from a format string
func NewConfigurationError(format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Msg: fmt.Sprintf(format, args...)}
}

// StageError wraps a failure inside a named matching stage. Output from stages
// that completed before the failure remains valid.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// NewStageError wraps an error with the stage it occurred in
func NewStageError(stage string, err error) *StageError {
	return &StageError{Stage: stage, Err: err}
}
