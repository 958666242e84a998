// Package guard holds the result type shared by the workflow guard packages.
// Guards are pure functions: they evaluate preconditions from a snapshot and
// never touch storage.
package guard

import "fmt"

// Result represents the outcome of a guard evaluation.
type Result struct {
	Allowed bool
	Reason  string
	// Kind is the domain error class the failure maps to (NotFound, Conflict, ...).
	Kind error
}

// Allow is the passing result.
func Allow() Result {
	return Result{Allowed: true}
}

// Deny builds a failing result of the given kind.
func Deny(kind error, format string, args ...any) Result {
	return Result{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

// Error converts the result to an error wrapping Kind, or nil when allowed.
func (r Result) Error() error {
	if r.Allowed {
		return nil
	}
	if r.Kind == nil {
		return fmt.Errorf("%s", r.Reason)
	}
	return fmt.Errorf("%w: %s", r.Kind, r.Reason)
}

// First returns the first failing result, or Allow when all pass.
func First(results ...Result) Result {
	for _, r := range results {
		if !r.Allowed {
			return r
		}
	}
	return Allow()
}
