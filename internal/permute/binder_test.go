package permute

import (
	"strings"
	"testing"

	"github.com/defcall/defcall/internal/descriptor"
	"github.com/defcall/defcall/internal/diagnostics"
	"github.com/defcall/defcall/internal/signature"
)

// calcSig models a function with two required and two defaulted parameters:
// lhs, rhs int; add bool = true; divideResultBy option.Option[int] (zero).
func calcSig(t *testing.T) *signature.Signature {
	t.Helper()
	decl := &descriptor.Declaration{
		Name:       "calculate",
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
	sig, derr := signature.Build(decl)
	if derr != nil {
		t.Fatalf("Build() failed: %v", derr)
	}
	return sig
}

func TestBind(t *testing.T) {
	table := Compile(calcSig(t))
	pos := diagnostics.Position{File: "calls.txt", Line: 1}

	tests := []struct {
		name string
		args Args
		want []string
	}{
		{
			name: "positional only, defaults filled",
			args: Args{Positional: []string{"5", "5"}},
			want: []string{"5", "5", "true", "*new(option.Option[int])"},
		},
		{
			name: "all named, literal order free",
			args: Args{Named: []NamedArg{
				{Name: "rhs", Value: "5"},
				{Name: "lhs", Value: "15"},
				{Name: "add", Value: "false"},
			}},
			want: []string{"15", "5", "false", "*new(option.Option[int])"},
		},
		{
			name: "positional prefix plus one named default",
			args: Args{
				Positional: []string{"5", "5"},
				Named:      []NamedArg{{Name: "divideResultBy", Value: "option.Some(2)"}},
			},
			want: []string{"5", "5", "true", "option.Some(2)"},
		},
		{
			name: "fully positional",
			args: Args{Positional: []string{"1", "2", "false", "option.Some(3)"}},
			want: []string{"1", "2", "false", "option.Some(3)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, derr := table.Bind(tt.args, pos)
			if derr != nil {
				t.Fatalf("Bind() failed: %v", derr)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Bind() returned %d values, want %d", len(got), len(tt.want))
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("value[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestBindRejects(t *testing.T) {
	table := Compile(calcSig(t))
	pos := diagnostics.Position{File: "calls.txt", Line: 7}

	tests := []struct {
		name    string
		args    Args
		wantMsg string
	}{
		{
			name:    "too many arguments",
			args:    Args{Positional: []string{"1", "2", "3", "4", "5"}},
			wantMsg: "at most 4 arguments",
		},
		{
			name: "duplicate named key",
			args: Args{
				Positional: []string{"1", "2"},
				Named:      []NamedArg{{Name: "add", Value: "true"}, {Name: "add", Value: "false"}},
			},
			wantMsg: `duplicate named argument "add"`,
		},
		{
			name: "unknown key",
			args: Args{
				Positional: []string{"1", "2"},
				Named:      []NamedArg{{Name: "subtract", Value: "true"}},
			},
			wantMsg: `no parameter "subtract"`,
		},
		{
			name: "key for a positionally bound parameter",
			args: Args{
				Positional: []string{"1", "2"},
				Named:      []NamedArg{{Name: "lhs", Value: "3"}},
			},
			wantMsg: `"lhs" is already bound positionally`,
		},
		{
			name:    "required parameter unsupplied",
			args:    Args{Positional: []string{"1"}},
			wantMsg: "does not accept 1 positional arguments",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, derr := table.Bind(tt.args, pos)
			if derr == nil {
				t.Fatal("Bind() succeeded, want C001")
			}
			if derr.Code != diagnostics.ErrC001 {
				t.Errorf("code = %s, want C001", derr.Code)
			}
			if !strings.Contains(derr.Message, tt.wantMsg) {
				t.Errorf("message %q does not contain %q", derr.Message, tt.wantMsg)
			}
			if derr.Pos != pos {
				t.Errorf("position = %v, want %v", derr.Pos, pos)
			}
		})
	}
}

func TestBindOutputAlwaysFullLength(t *testing.T) {
	sig := calcSig(t)
	table := Compile(sig)

	// Bind every canonical form with placeholder values; the output must
	// always have exactly N entries with nothing left empty.
	for _, e := range table.Entries {
		args := Args{}
		for i := 0; i < e.Prefix; i++ {
			args.Positional = append(args.Positional, "v")
		}
		for _, p := range e.Named {
			args.Named = append(args.Named, NamedArg{Name: sig.Params[p].Name, Value: "v"})
		}

		got, derr := table.Bind(args, diagnostics.Position{})
		if derr != nil {
			t.Fatalf("Bind() failed for %+v: %v", e, derr)
		}
		if len(got) != sig.Len() {
			t.Fatalf("Bind() returned %d values for %+v, want %d", len(got), e, sig.Len())
		}
		for i, v := range got {
			if v == "" {
				t.Errorf("value[%d] empty for %+v", i, e)
			}
		}
	}
}
