// Package defcall is the embedding API: run the declaration pipeline
// without the CLI or the artifact store. Host tools hand in descriptors
// (from the manifest, the scanner or their own front end) and get back
// the compiled dispatch table and qualified reference.
package defcall

import (
	"github.com/defcall/defcall/internal/descriptor"
	"github.com/defcall/defcall/internal/diagnostics"
	"github.com/defcall/defcall/internal/emit"
	"github.com/defcall/defcall/internal/permute"
	"github.com/defcall/defcall/internal/pipeline"
	"github.com/defcall/defcall/internal/qualify"
	"github.com/defcall/defcall/internal/signature"
)

// CompiledDeclaration is the full output of processing one declaration.
type CompiledDeclaration struct {
	Decl      *descriptor.Declaration
	Signature *signature.Signature
	Path      *qualify.QualifiedPath
	Table     *permute.Table
}

// Process runs a declaration through the full pipeline: signature
// normalization, reference resolution, table compilation. On failure the
// compiled declaration is nil and every collected diagnostic is returned.
func Process(d *descriptor.Declaration) (*CompiledDeclaration, []*diagnostics.DiagnosticError) {
	p := pipeline.New(
		signature.BuildProcessor{},
		qualify.ResolveProcessor{},
		permute.CompileProcessor{},
	)
	ctx := p.Run(pipeline.NewContext(d))
	if ctx.Failed() {
		return nil, ctx.Errors
	}
	return &CompiledDeclaration{
		Decl:      d,
		Signature: ctx.Signature.(*signature.Signature),
		Path:      ctx.Path.(*qualify.QualifiedPath),
		Table:     ctx.Table.(*permute.Table),
	}, nil
}

// Bind matches one authored argument shape against the compiled table and
// renders the canonical invocation.
func (c *CompiledDeclaration) Bind(args permute.Args, pos diagnostics.Position) (string, *diagnostics.DiagnosticError) {
	values, derr := c.Table.Bind(args, pos)
	if derr != nil {
		return "", derr
	}
	code, err := emit.Canonical(c.Signature, c.Path, values)
	if err != nil {
		return "", diagnostics.NewError(diagnostics.ErrC001, pos, err.Error())
	}
	return code, nil
}
