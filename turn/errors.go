package turn

import "fmt"

// EngineFailureError is returned by Decide whenever the engine could not
// produce its own move. Fallback is the move that was sent instead.
type EngineFailureError struct {
	Fallback string
	Cause    error
}

func (e *EngineFailureError) Error() string {
	return fmt.Sprintf("engine failure (fallback %s): %v", e.Fallback, e.Cause)
}

func (e *EngineFailureError) Unwrap() error {
	return e.Cause
}
