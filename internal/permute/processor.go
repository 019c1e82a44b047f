package permute

import (
	"github.com/defcall/defcall/internal/pipeline"
	"github.com/defcall/defcall/internal/signature"
)

// CompileProcessor is the pipeline stage that compiles the dispatch table.
type CompileProcessor struct{}

func (CompileProcessor) Process(ctx *pipeline.Context) *pipeline.Context {
	if ctx.Failed() || ctx.Signature == nil {
		return ctx
	}
	ctx.Table = Compile(ctx.Signature.(*signature.Signature))
	return ctx
}
