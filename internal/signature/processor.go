package signature

import "github.com/defcall/defcall/internal/pipeline"

// BuildProcessor is the pipeline stage that normalizes a declaration into
// a Signature and checks aggregate field visibility.
type BuildProcessor struct{}

func (BuildProcessor) Process(ctx *pipeline.Context) *pipeline.Context {
	if ctx.Failed() || ctx.Decl == nil {
		return ctx
	}
	sig, derr := Build(ctx.Decl)
	if derr != nil {
		ctx.AddError(derr)
		return ctx
	}
	if derr := ValidateFieldVisibility(ctx.Decl, sig); derr != nil {
		ctx.AddError(derr)
		return ctx
	}
	ctx.Signature = sig
	return ctx
}
