package signature

import (
	"github.com/defcall/defcall/internal/descriptor"
	"github.com/defcall/defcall/internal/diagnostics"
)

// ValidateFieldVisibility checks that every field of an aggregate is at
// least as visible as the aggregate itself. The generated constructor call
// names every field, so a caller allowed to see the aggregate must also be
// allowed to construct each field. Function signatures need no check.
//
// Restricted scopes are compared by tier only; two restricted paths are
// treated as equally visible.
func ValidateFieldVisibility(d *descriptor.Declaration, s *Signature) *diagnostics.DiagnosticError {
	if !s.Aggregate() {
		return nil
	}
	for _, p := range s.Params {
		if p.Visibility < s.Visibility {
			return diagnostics.NewError(diagnostics.ErrD003, d.Pos(), p.Name, string(s.Kind), s.Name)
		}
	}
	return nil
}
