package generator

import (
	"errors"
	"fmt"
	"go/token"
)

// ErrRequiresTaggedUnion is the sentinel behind every RequiresTaggedUnion diagnostic.
var ErrRequiresTaggedUnion = errors.New("enumcmp:generate can only be applied to a tagged union (sealed interface)")

// DiagnosticCode identifies a diagnostic.
type DiagnosticCode string

// CodeRequiresTaggedUnion is reported when the directive annotates anything
// other than an interface type.
const CodeRequiresTaggedUnion DiagnosticCode = "RequiresTaggedUnion"

// Severity of a diagnostic. Only errors are produced.
type Severity string

// SeverityError fails the expansion.
const SeverityError Severity = "error"

// Diagnostic is a compile-time error attached to a source position.
type Diagnostic struct {
	Code     DiagnosticCode
	Severity Severity
	Pos      token.Position
	Message  string
}

func requiresTaggedUnion(d Decl) *Diagnostic {
	return &Diagnostic{
		Code:     CodeRequiresTaggedUnion,
		Severity: SeverityError,
		Pos:      d.Pos,
		Message:  fmt.Sprintf("%s, not %s %s", ErrRequiresTaggedUnion.Error(), d.Kind, d.Name),
	}
}

// Error implements the error interface.
func (d *Diagnostic) Error() string {
	if !d.Pos.IsValid() {
		return d.Message
	}
	return fmt.Sprintf("%s: %s", d.Pos, d.Message)
}

// Unwrap lets errors.Is match ErrRequiresTaggedUnion.
func (d *Diagnostic) Unwrap() error {
	if d.Code == CodeRequiresTaggedUnion {
		return ErrRequiresTaggedUnion
	}
	return nil
}
