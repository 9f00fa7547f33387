package orders

import "fmt"

// FetchError: transient read failure, recoverable by refresh.
type FetchError struct {
	Op  string
	Err error
}

func (e *FetchError) Error() string { return fmt.Sprintf("fetch %s: %v", e.Op, e.Err) }
func (e *FetchError) Unwrap() error { return e.Err }

// WriteError: mutation rejected by the backend; local state stays unchanged.
type WriteError struct {
	Op  string
	Err error
}

func (e *WriteError) Error() string { return fmt.Sprintf("write %s: %v", e.Op, e.Err) }
func (e *WriteError) Unwrap() error { return e.Err }

// NotFoundError: referenced entity missing.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("%s %s not found", e.Entity, e.ID) }

// ValidationError: client-side precondition failed, never reaches the network.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string { return fmt.Sprintf("%s: %s", e.Field, e.Reason) }

// InvalidTransitionError: state-machine rejection, never reaches the network.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition from %q to %q", e.From, e.To)
}

// AuthError: sign-in or session failure; blocks protected views.
type AuthError struct {
	Reason string
	Err    error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("auth: %s: %v", e.Reason, e.Err)
	}
	return "auth: " + e.Reason
}
func (e *AuthError) Unwrap() error { return e.Err }
