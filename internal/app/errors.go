package app

import "fmt"

// ValidationError reports a request that cannot be run as given.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// InputError reports input that cannot be read or parsed. Err, when set, is
// the underlying cause (fetch.ErrNotFound, fetch.ErrRead, a parse error).
type InputError struct {
	Ref    string
	Reason string
	Err    error
}

func (e *InputError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("input %q: %s: %v", e.Ref, e.Reason, e.Err)
	}
	return fmt.Sprintf("input %q: %s", e.Ref, e.Reason)
}

func (e *InputError) Unwrap() error {
	return e.Err
}
