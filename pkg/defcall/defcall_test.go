package defcall

import (
	"testing"

	"github.com/defcall/defcall/internal/descriptor"
	"github.com/defcall/defcall/internal/diagnostics"
	"github.com/defcall/defcall/internal/permute"
)

func TestProcess(t *testing.T) {
	decl := &descriptor.Declaration{
		Name:       "Calculate",
		Kind:       descriptor.Function,
		Scope:      "example.com/mod/calc",
		Visibility: descriptor.Public,
		Params: []descriptor.Param{
			{Name: "lhs", Type: "int", Visibility: descriptor.Public},
			{Name: "rhs", Type: "int", Visibility: descriptor.Public},
			{Name: "add", Type: "bool", HasDefault: true, DefaultExpr: "true", Visibility: descriptor.Public},
			{Name: "divideResultBy", Type: "option.Option[int]", HasDefault: true, Visibility: descriptor.Public},
		},
	}

	compiled, derrs := Process(decl)
	if len(derrs) > 0 {
		t.Fatalf("Process() failed: %v", derrs)
	}

	if compiled.Signature.Required() != 2 || compiled.Signature.Defaulted() != 2 {
		t.Errorf("signature R/D = %d/%d, want 2/2",
			compiled.Signature.Required(), compiled.Signature.Defaulted())
	}
	if got := compiled.Table.Size(); got != 15 {
		t.Errorf("table size = %d, want 15", got)
	}
	if got := compiled.Table.OrderedFormCount(); got != 57 {
		t.Errorf("ordered spellings = %d, want 57", got)
	}
	if got := compiled.Path.Ref(); got != "calc.Calculate" {
		t.Errorf("reference = %q, want calc.Calculate", got)
	}

	code, derr := compiled.Bind(permute.Args{
		Positional: []string{"5", "5"},
		Named:      []permute.NamedArg{{Name: "divideResultBy", Value: "option.Some(2)"}},
	}, diagnostics.Position{})
	if derr != nil {
		t.Fatalf("Bind() failed: %v", derr)
	}
	if want := "calc.Calculate(5, 5, true, option.Some(2))"; code != want {
		t.Errorf("Bind() = %q, want %q", code, want)
	}
}

func TestProcessCollectsDiagnostics(t *testing.T) {
	tests := []struct {
		name     string
		decl     *descriptor.Declaration
		wantCode diagnostics.ErrorCode
	}{
		{
			name: "required after defaulted",
			decl: &descriptor.Declaration{
				Name: "F", Kind: descriptor.Function, Scope: "p", Visibility: descriptor.Public,
				Params: []descriptor.Param{
					{Name: "a", Type: "int", HasDefault: true, DefaultExpr: "1", Visibility: descriptor.Public},
					{Name: "b", Type: "int", Visibility: descriptor.Public},
				},
			},
			wantCode: diagnostics.ErrD001,
		},
		{
			name: "empty declaration",
			decl: &descriptor.Declaration{
				Name: "F", Kind: descriptor.Function, Scope: "p", Visibility: descriptor.Public,
			},
			wantCode: diagnostics.ErrD002,
		},
		{
			name: "under-visible field",
			decl: &descriptor.Declaration{
				Name: "S", Kind: descriptor.NamedFields, Scope: "p", Visibility: descriptor.Public,
				Params: []descriptor.Param{
					{Name: "hidden", Type: "int", Visibility: descriptor.Private},
				},
			},
			wantCode: diagnostics.ErrD003,
		},
		{
			name: "public without scope",
			decl: &descriptor.Declaration{
				Name: "F", Kind: descriptor.Function, Visibility: descriptor.Public,
				Params: []descriptor.Param{
					{Name: "a", Type: "int", Visibility: descriptor.Public},
				},
			},
			wantCode: diagnostics.ErrD004,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			compiled, derrs := Process(tt.decl)
			if compiled != nil {
				t.Error("Process() returned a compiled declaration alongside errors")
			}
			if len(derrs) != 1 {
				t.Fatalf("got %d diagnostics, want 1: %v", len(derrs), derrs)
			}
			if derrs[0].Code != tt.wantCode {
				t.Errorf("code = %s, want %s", derrs[0].Code, tt.wantCode)
			}
		})
	}
}
