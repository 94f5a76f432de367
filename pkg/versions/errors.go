package versions

import "fmt"

// Source identifies which version a resolver produces.
type Source string

const (
	SourcePackage     Source = "package"
	SourceTool        Source = "tool"
	SourceInterpreter Source = "interpreter"
)

// ResolutionError is returned when a version cannot be determined.
// Error returns Message unchanged.
type ResolutionError struct {
	Source  Source
	Message string
	Cause   error
}

func (e *ResolutionError) Error() string { return e.Message }
func (e *ResolutionError) Unwrap() error { return e.Cause }

func failf(source Source, cause error, format string, args ...any) *ResolutionError {
	return &ResolutionError{
		Source:  source,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}
