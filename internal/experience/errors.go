package experience

import "fmt"

// LoadError reports a bank file that could not be read or decoded
type LoadError struct {
	Message string
	Cause   error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load error: %s: %v", e.Message, e.Cause)
}

func (e *LoadError) Unwrap() error { return e.Cause }

// NormalizationError reports a record that cannot be imported as written.
// Index is the position of the offending experience or education entry, or -1 for
// the bank itself.
type NormalizationError struct {
	Section string
	Index   int
	Message string
}

func (e *NormalizationError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("normalization error: %s: %s", e.Section, e.Message)
	}
	return fmt.Sprintf("normalization error: %s[%d]: %s", e.Section, e.Index, e.Message)
}
