// Package failure defines the closed error taxonomy that crosses the
// engine's apply boundary. The engine never panics or throws across that
// boundary (spec §7); every rejected intent and every resolution problem
// becomes a Failure value with a stable, machine-readable Code.
package failure

// Kind is the semantic category of a failure, not a Go type hierarchy.
type Kind string

const (
	// InvalidIntent: well-formed but not currently legal (wrong turn,
	// already passed, planet not controlled, ...).
	InvalidIntent Kind = "invalid_intent"
	// RulesViolation: the intent breaks a rule (over-capacity,
	// under-resourced, ...).
	RulesViolation Kind = "rules_violation"
	// AmbiguousChoice: the intent is missing a required tie-break or
	// selection; State.Pending describes what is missing.
	AmbiguousChoice Kind = "ambiguous_choice"
	// UnresolvableEffect: an atom's preconditions failed during
	// resolution. Default is a silent no-op plus a Warning event unless
	// card text specifies an alternative.
	UnresolvableEffect Kind = "unresolvable_effect"
	// InternalInvariantViolation: a bug. Callers must not keep applying
	// intents against the affected state.
	InternalInvariantViolation Kind = "internal_invariant_violation"
)

// Failure is the stable, serializable shape returned instead of a Go
// error across apply's boundary. It still satisfies the error interface
// so it composes with normal Go code inside the engine.
type Failure struct {
	Kind    Kind
	Code    string // stable machine-readable code, e.g. "movement.asteroid_field"
	Message string // human-readable description, suitable for presentation
}

func (f *Failure) Error() string {
	if f == nil {
		return ""
	}
	return f.Code + ": " + f.Message
}

func New(kind Kind, code, message string) *Failure {
	return &Failure{Kind: kind, Code: code, Message: message}
}

func Invalid(code, message string) *Failure {
	return New(InvalidIntent, code, message)
}

func Violation(code, message string) *Failure {
	return New(RulesViolation, code, message)
}

func Ambiguous(code, message string) *Failure {
	return New(AmbiguousChoice, code, message)
}

func Unresolvable(code, message string) *Failure {
	return New(UnresolvableEffect, code, message)
}

func Internal(code, message string) *Failure {
	return New(InternalInvariantViolation, code, message)
}
