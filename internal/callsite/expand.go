package callsite

import (
	"fmt"

	"github.com/defcall/defcall/internal/artifact"
	"github.com/defcall/defcall/internal/diagnostics"
	"github.com/defcall/defcall/internal/emit"
	"github.com/defcall/defcall/internal/qualify"
)

// Result is one expanded call site.
type Result struct {
	// Name is the matched item name.
	Name string
	// Code is the canonical positional invocation.
	Code string
	// ImportPath is the package the invocation references ("" for
	// unqualified private references).
	ImportPath string
}

// Expander resolves authored calls against stored generation artifacts.
type Expander struct {
	Store *artifact.Store
}

// NewExpander creates an expander over an open artifact store.
func NewExpander(store *artifact.Store) *Expander {
	return &Expander{Store: store}
}

// Expand parses one call site, matches it against the item's dispatch
// table and renders the canonical invocation.
func (e *Expander) Expand(src string, pos diagnostics.Position) (*Result, *diagnostics.DiagnosticError) {
	name, args, derr := Parse(src, pos)
	if derr != nil {
		return nil, derr
	}

	rec, err := e.Store.LookupByName(name)
	if err != nil {
		return nil, diagnostics.NewError(diagnostics.ErrC001, pos,
			fmt.Sprintf("no generated rules for %s: %v", name, err))
	}

	sig := rec.Signature
	values, derr := rec.Table().Bind(args, pos)
	if derr != nil {
		return nil, derr
	}

	path, derr := qualify.Resolve(sig.Visibility, sig.Scope, sig.Name, pos)
	if derr != nil {
		return nil, derr
	}

	code, err := emit.Canonical(sig, path, values)
	if err != nil {
		return nil, diagnostics.NewError(diagnostics.ErrC001, pos, err.Error())
	}

	return &Result{Name: name, Code: code, ImportPath: path.ImportPath}, nil
}

// ExpandAll expands a batch of call sites, attributing each to its line.
// Expansion stops at the first failure so diagnostics point at one site.
func (e *Expander) ExpandAll(sources []string, file string) ([]emit.Expansion, *diagnostics.DiagnosticError) {
	out := make([]emit.Expansion, 0, len(sources))
	for i, src := range sources {
		pos := diagnostics.Position{File: file, Line: i + 1}
		res, derr := e.Expand(src, pos)
		if derr != nil {
			return nil, derr
		}
		out = append(out, emit.Expansion{
			Source:     src,
			Code:       res.Code,
			ImportPath: res.ImportPath,
		})
	}
	return out, nil
}
