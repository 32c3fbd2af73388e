package nfa

import "fmt"

// BuildError represents an error during NFA construction via the Builder
// API: an out-of-range transition target, or a Patch/PatchSplit call
// against a state of the wrong kind.
type BuildError struct {
	Message string
	StateID StateID
}

func (e *BuildError) Error() string {
	if e.StateID != InvalidState {
		return fmt.Sprintf("nfa build error at state %d: %s", e.StateID, e.Message)
	}
	return fmt.Sprintf("nfa build error: %s", e.Message)
}
