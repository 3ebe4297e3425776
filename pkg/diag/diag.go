package diag

import "fmt"

// Kind classifies a diagnostic by the type-system rule that produced it.
type Kind int

const (
	// TypeMismatch reports an assignability failure.
	TypeMismatch Kind = iota
	// UndefinedName reports a reference to a name that is not in scope.
	UndefinedName
	// DuplicateDeclaration reports a second declaration of a name in the same scope.
	DuplicateDeclaration
	// WrongArity reports a generic or function argument count mismatch.
	WrongArity
	// UnresolvedConstraint reports a generic argument failing its parameter's constraint.
	UnresolvedConstraint
	// IncompleteMatch reports an exhaustiveness failure over a discriminated union.
	IncompleteMatch
	// InvalidOperator reports a type-level operator applied to an incompatible shape.
	InvalidOperator
	// InvalidAssignment reports a write to a constant or a readonly field.
	InvalidAssignment
	// Internal reports a condition that indicates a bug in the checker itself.
	Internal
)

func (k Kind) String() string {
	switch k {
	case TypeMismatch:
		return "TypeMismatch"
	case UndefinedName:
		return "UndefinedName"
	case DuplicateDeclaration:
		return "DuplicateDeclaration"
	case WrongArity:
		return "WrongArity"
	case UnresolvedConstraint:
		return "UnresolvedConstraint"
	case IncompleteMatch:
		return "IncompleteMatch"
	case InvalidOperator:
		return "InvalidOperator"
	case InvalidAssignment:
		return "InvalidAssignment"
	default:
		return "Internal"
	}
}

// Severity is the level of a diagnostic.
type Severity int

const (
	Error Severity = iota
	Warning
	Info
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	default:
		return "info"
	}
}

// Diagnostic is a single message produced during type checking.
type Diagnostic struct {
	Kind     Kind
	Severity Severity
	Position Position
	Msg      string
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s %s at %d:%d: %s", d.Severity, d.Kind, d.Position.Line, d.Position.Column, d.Msg)
}

// Errorf builds an error-severity diagnostic.
func Errorf(kind Kind, pos Position, format string, args ...interface{}) Diagnostic {
	return Diagnostic{Kind: kind, Severity: Error, Position: pos, Msg: fmt.Sprintf(format, args...)}
}

// Warningf builds a warning-severity diagnostic.
func Warningf(kind Kind, pos Position, format string, args ...interface{}) Diagnostic {
	return Diagnostic{Kind: kind, Severity: Warning, Position: pos, Msg: fmt.Sprintf(format, args...)}
}
