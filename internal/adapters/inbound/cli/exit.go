package cli

import "fmt"

// ExitError carries a failing verdict to main. The report has already been
// printed, so main exits with Code without printing anything else.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("validation failed (exit code %d)", e.Code)
}

// exitFor returns nil for a passing exit code and an *ExitError otherwise.
func exitFor(code int) error {
	if code == 0 {
		return nil
	}
	return &ExitError{Code: code}
}
