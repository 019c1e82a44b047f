// Package descriptor holds the raw declaration descriptors the front ends
// (manifest, source scanner) produce and the generation pipeline consumes.
// Descriptors carry no semantics of their own; validation happens in the
// signature stage.
package descriptor

import (
	"fmt"
	"strings"

	"github.com/defcall/defcall/internal/diagnostics"
)

// Kind classifies an annotated item.
type Kind string

const (
	// Function is a plain function declaration.
	Function Kind = "function"
	// NamedFields is a struct constructed field by field.
	NamedFields Kind = "struct"
	// TupleFields is a positional constructor (fields addressed by position).
	TupleFields Kind = "tuple"
)

// ParseKind maps a manifest kind string to a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case Function, NamedFields, TupleFields:
		return Kind(s), nil
	}
	return "", fmt.Errorf("unknown kind %q (want function, struct or tuple)", s)
}

// Visibility is the declared accessibility tier of an item or field.
type Visibility int

const (
	Private Visibility = iota
	Restricted
	Public
)

func (v Visibility) String() string {
	switch v {
	case Private:
		return "private"
	case Restricted:
		return "restricted"
	case Public:
		return "public"
	}
	return fmt.Sprintf("visibility(%d)", int(v))
}

// ParseVisibility maps a manifest visibility string to a Visibility.
func ParseVisibility(s string) (Visibility, error) {
	switch s {
	case "private":
		return Private, nil
	case "restricted":
		return Restricted, nil
	case "public":
		return Public, nil
	}
	return Private, fmt.Errorf("unknown visibility %q (want private, restricted or public)", s)
}

// VisibilityForName derives a field's visibility from Go exportedness.
func VisibilityForName(name string) Visibility {
	if name == "" {
		return Private
	}
	r := rune(name[0])
	if r >= 'A' && r <= 'Z' {
		return Public
	}
	return Private
}

// Param is one raw parameter or field.
type Param struct {
	Name string
	Type string

	// HasDefault marks a defaulted parameter. When DefaultExpr is empty the
	// default is the type's zero construction.
	HasDefault  bool
	DefaultExpr string

	// Visibility applies to aggregate fields only.
	Visibility Visibility
}

// Declaration is one annotated item as reported by a front end.
type Declaration struct {
	Name string
	Kind Kind

	// Scope is the import path of the defining package. Empty means the
	// author supplied none; that is only legal for private items.
	Scope string

	Visibility Visibility
	Params     []Param

	// Source location of the annotation, for diagnostics.
	SourceFile string
	Line       int
}

// Pos returns the declaration's diagnostic position.
func (d *Declaration) Pos() diagnostics.Position {
	return diagnostics.Position{File: d.SourceFile, Line: d.Line}
}

// Canonical returns a normalized single-line rendering of the declaration,
// used for artifact fingerprinting. Whitespace inside default expressions
// is collapsed so formatting-only edits do not change the fingerprint.
func (d *Declaration) Canonical() string {
	var b strings.Builder
	b.WriteString(string(d.Kind))
	b.WriteByte(' ')
	b.WriteString(d.Scope)
	b.WriteByte('.')
	b.WriteString(d.Name)
	b.WriteByte(' ')
	b.WriteString(d.Visibility.String())
	for _, p := range d.Params {
		b.WriteString(" | ")
		b.WriteString(p.Name)
		b.WriteByte(':')
		b.WriteString(strings.Join(strings.Fields(p.Type), " "))
		if p.HasDefault {
			b.WriteByte('=')
			if p.DefaultExpr == "" {
				b.WriteString("<zero>")
			} else {
				b.WriteString(strings.Join(strings.Fields(p.DefaultExpr), " "))
			}
		}
		b.WriteByte('/')
		b.WriteString(p.Visibility.String())
	}
	return b.String()
}
