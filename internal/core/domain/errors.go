package domain

import (
	"fmt"
	"strings"
)

// FieldProblem is a single rejected configuration key.
type FieldProblem struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (p FieldProblem) String() string {
	return p.Field + ": " + p.Reason
}

// ValidationError reports malformed or missing configuration. Callers must
// treat it as a hard stop: nothing is planned for an invalid spec.
type ValidationError struct {
	Problems []FieldProblem
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		parts[i] = p.String()
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Has reports whether field was rejected.
func (e *ValidationError) Has(field string) bool {
	for _, p := range e.Problems {
		if p.Field == field {
			return true
		}
	}
	return false
}

// PreconditionError means the builder was handed a spec that did not come
// out of the normalizer intact.
type PreconditionError struct {
	Reason string
}

func (e *PreconditionError) Error() string {
	return "plan precondition failed: " + e.Reason
}

// PriorityCollisionWarning is advisory: a rule of the plan uses a priority
// that a different host already holds on the listener.
type PriorityCollisionWarning struct {
	Priority     int        `json:"priority" yaml:"priority"`
	Role         TargetRole `json:"role" yaml:"role"`
	Host         string     `json:"host" yaml:"host"`
	ConflictHost string     `json:"conflictHost" yaml:"conflictHost"`
}

func (w PriorityCollisionWarning) Error() string {
	return fmt.Sprintf("priority %d for %s rule of %s is already used by %s",
		w.Priority, strings.ToLower(string(w.Role)), w.Host, w.ConflictHost)
}
