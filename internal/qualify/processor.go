package qualify

import (
	"github.com/defcall/defcall/internal/pipeline"
	"github.com/defcall/defcall/internal/signature"
)

// ResolveProcessor is the pipeline stage that computes the qualified
// reference for the declaration.
type ResolveProcessor struct{}

func (ResolveProcessor) Process(ctx *pipeline.Context) *pipeline.Context {
	if ctx.Failed() || ctx.Signature == nil {
		return ctx
	}
	sig := ctx.Signature.(*signature.Signature)
	path, derr := Resolve(sig.Visibility, sig.Scope, sig.Name, ctx.Decl.Pos())
	if derr != nil {
		ctx.AddError(derr)
		return ctx
	}
	ctx.Path = path
	return ctx
}
