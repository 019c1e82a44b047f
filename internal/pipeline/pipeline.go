// Package pipeline sequences the declaration-processing stages. Each stage
// reads the context, adds its output or its diagnostics, and passes the
// context on. A declaration that fails a stage produces no later outputs
// and no artifact; nothing partial escapes.
package pipeline

import (
	"github.com/defcall/defcall/internal/descriptor"
	"github.com/defcall/defcall/internal/diagnostics"
)

// Context carries one declaration through the stages. Stage outputs are
// stored untyped so stage packages can depend on this package without
// import cycles; each consumer asserts the type it produced.
type Context struct {
	Decl *descriptor.Declaration

	Signature interface{} // *signature.Signature
	Path      interface{} // *qualify.QualifiedPath
	Table     interface{} // *permute.Table

	Errors []*diagnostics.DiagnosticError
}

// NewContext starts a fresh context for one declaration.
func NewContext(d *descriptor.Declaration) *Context {
	return &Context{Decl: d, Errors: []*diagnostics.DiagnosticError{}}
}

// Failed reports whether any stage produced a diagnostic.
func (c *Context) Failed() bool { return len(c.Errors) > 0 }

// AddError records a stage diagnostic.
func (c *Context) AddError(err *diagnostics.DiagnosticError) {
	c.Errors = append(c.Errors, err)
}

// Processor is a single processing stage.
type Processor interface {
	Process(ctx *Context) *Context
}

// Pipeline represents a sequence of processing stages.
type Pipeline struct {
	processors []Processor
}

func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run executes the pipeline. Stages self-skip once the context has
// failed, so Run always visits every stage.
func (p *Pipeline) Run(initialCtx *Context) *Context {
	ctx := initialCtx
	for _, processor := range p.processors {
		ctx = processor.Process(ctx)
	}
	return ctx
}
