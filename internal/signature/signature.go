// Package signature builds the normalized parameter model for an annotated
// declaration and enforces the structural rules every later stage relies
// on: defaulted parameters form a strict suffix, and aggregate fields are
// at least as visible as the aggregate itself.
package signature

import (
	"github.com/defcall/defcall/internal/descriptor"
	"github.com/defcall/defcall/internal/diagnostics"
)

// Param is one normalized parameter or field.
type Param struct {
	Name     string `json:"name"`
	Position int    `json:"position"`
	Type     string `json:"type"`

	HasDefault bool `json:"hasDefault"`
	// DefaultExpr is the declared default expression. Empty with HasDefault
	// set means the default is the type's zero construction.
	DefaultExpr string `json:"defaultExpr,omitempty"`

	Visibility descriptor.Visibility `json:"visibility"`
}

// ZeroDefault reports whether the parameter defaults to its type's zero
// construction rather than an explicit expression.
func (p Param) ZeroDefault() bool {
	return p.HasDefault && p.DefaultExpr == ""
}

// DefaultValue renders the substitution for an omitted parameter: the
// declared expression, or a zero construction of the parameter's type.
func (p Param) DefaultValue() string {
	if !p.HasDefault {
		return ""
	}
	if p.DefaultExpr != "" {
		return p.DefaultExpr
	}
	return "*new(" + p.Type + ")"
}

// Signature is the immutable, ordered parameter model of one declaration.
// Build once per declaration; never mutate afterwards.
type Signature struct {
	Name       string                `json:"name"`
	Kind       descriptor.Kind       `json:"kind"`
	Visibility descriptor.Visibility `json:"visibility"`
	// Scope is the import path of the defining package ("" when unset).
	Scope  string  `json:"scope,omitempty"`
	Params []Param `json:"params"`
}

// Build normalizes a raw declaration into a Signature.
//
// Fails with D002 when the parameter list is empty and with D001 when a
// required parameter appears after a defaulted one (defaults must be
// trailing, or omission would be ambiguous).
func Build(d *descriptor.Declaration) (*Signature, *diagnostics.DiagnosticError) {
	if len(d.Params) == 0 {
		return nil, diagnostics.NewError(diagnostics.ErrD002, d.Pos(), d.Name)
	}

	sig := &Signature{
		Name:       d.Name,
		Kind:       d.Kind,
		Visibility: d.Visibility,
		Scope:      d.Scope,
		Params:     make([]Param, 0, len(d.Params)),
	}

	seenDefault := false
	for i, p := range d.Params {
		if p.HasDefault {
			seenDefault = true
		} else if seenDefault {
			return nil, diagnostics.NewError(diagnostics.ErrD001, d.Pos(), p.Name)
		}
		sig.Params = append(sig.Params, Param{
			Name:        p.Name,
			Position:    i,
			Type:        p.Type,
			HasDefault:  p.HasDefault,
			DefaultExpr: p.DefaultExpr,
			Visibility:  p.Visibility,
		})
	}

	return sig, nil
}

// Len returns the declared parameter count N.
func (s *Signature) Len() int { return len(s.Params) }

// Required returns R, the number of leading non-defaulted parameters.
func (s *Signature) Required() int {
	for i, p := range s.Params {
		if p.HasDefault {
			return i
		}
	}
	return len(s.Params)
}

// Defaulted returns D = N - R.
func (s *Signature) Defaulted() int { return s.Len() - s.Required() }

// ParamNamed returns the parameter with the given name, if any.
func (s *Signature) ParamNamed(name string) (Param, bool) {
	for _, p := range s.Params {
		if p.Name == name {
			return p, true
		}
	}
	return Param{}, false
}

// Aggregate reports whether the signature describes a struct-like item
// whose parameters are fields.
func (s *Signature) Aggregate() bool {
	return s.Kind == descriptor.NamedFields || s.Kind == descriptor.TupleFields
}
