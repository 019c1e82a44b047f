// Package qualify computes the scope-correct reference embedded in every
// generated call. The defining package's import path is supplied by the
// author (never inferred); anchored at the module root it resolves
// identically from the defining package and from any external consumer.
package qualify

import (
	"strings"

	"github.com/defcall/defcall/internal/descriptor"
	"github.com/defcall/defcall/internal/diagnostics"
)

// QualifiedPath is the reference to the underlying item used by the
// canonical call emitter. A generation-time value only; it is never
// persisted and never exists at run time.
type QualifiedPath struct {
	// ImportPath is the defining package's import path. Empty for private
	// items, whose reference is valid only inside the defining package.
	ImportPath string
	// Segments are the import path segments, root first.
	Segments []string
	// Item is the declared item name.
	Item string
}

// Resolve computes the QualifiedPath for an item.
//
// Private items get a bare, unqualified reference; expanding such a call
// outside the defining package will not resolve, which is the documented
// trade-off for omitting the scope. Restricted and public items require an
// explicit scope token and fail with D004 without one.
func Resolve(vis descriptor.Visibility, scope, item string, pos diagnostics.Position) (*QualifiedPath, *diagnostics.DiagnosticError) {
	if vis == descriptor.Private {
		return &QualifiedPath{Item: item}, nil
	}
	if scope == "" {
		return nil, diagnostics.NewError(diagnostics.ErrD004, pos, item, vis.String())
	}
	return &QualifiedPath{
		ImportPath: scope,
		Segments:   strings.Split(scope, "/"),
		Item:       item,
	}, nil
}

// Qualified reports whether the path carries a package qualifier.
func (q *QualifiedPath) Qualified() bool { return q.ImportPath != "" }

// Root returns the fixed, scope-independent anchor of the reference:
// the first segment of the import path ("" for private items).
func (q *QualifiedPath) Root() string {
	if len(q.Segments) == 0 {
		return ""
	}
	return q.Segments[0]
}

// Alias returns the package alias used to qualify the item.
func (q *QualifiedPath) Alias() string {
	if !q.Qualified() {
		return ""
	}
	return ImportAlias(q.ImportPath)
}

// Ref renders the reference as it appears in emitted code.
func (q *QualifiedPath) Ref() string {
	if !q.Qualified() {
		return q.Item
	}
	return q.Alias() + "." + q.Item
}
