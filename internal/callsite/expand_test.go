package callsite

import (
	"strings"
	"testing"

	"github.com/defcall/defcall/internal/artifact"
	"github.com/defcall/defcall/internal/descriptor"
	"github.com/defcall/defcall/internal/diagnostics"
	"github.com/defcall/defcall/internal/permute"
	"github.com/defcall/defcall/internal/signature"
)

func storeWith(t *testing.T, decls ...*descriptor.Declaration) *artifact.Store {
	t.Helper()
	store, err := artifact.Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	for _, d := range decls {
		sig, derr := signature.Build(d)
		if derr != nil {
			t.Fatalf("Build() failed: %v", derr)
		}
		if _, err := store.Put(d, sig, permute.Compile(sig)); err != nil {
			t.Fatalf("Put() failed: %v", err)
		}
	}
	return store
}

func calcDecl() *descriptor.Declaration {
	return &descriptor.Declaration{
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
}

func privateDecl() *descriptor.Declaration {
	return &descriptor.Declaration{
		Name:       "helper",
		Kind:       descriptor.Function,
		Scope:      "example.com/mod/calc",
		Visibility: descriptor.Private,
		Params: []descriptor.Param{
			{Name: "n", Type: "int", Visibility: descriptor.Public},
			{Name: "scale", Type: "int", HasDefault: true, DefaultExpr: "1", Visibility: descriptor.Public},
		},
	}
}

func structDecl() *descriptor.Declaration {
	return &descriptor.Declaration{
		Name:       "Window",
		Kind:       descriptor.NamedFields,
		Scope:      "example.com/mod/view",
		Visibility: descriptor.Public,
		Params: []descriptor.Param{
			{Name: "Inner", Type: "io.Reader", Visibility: descriptor.Public},
			{Name: "Idx", Type: "int", HasDefault: true, Visibility: descriptor.Public},
			{Name: "Len", Type: "int", HasDefault: true, Visibility: descriptor.Public},
		},
	}
}

func tupleDecl() *descriptor.Declaration {
	return &descriptor.Declaration{
		Name:       "Pair",
		Kind:       descriptor.TupleFields,
		Scope:      "example.com/mod/pair",
		Visibility: descriptor.Public,
		Params: []descriptor.Param{
			{Name: "Value", Type: "int", Visibility: descriptor.Public},
			{Name: "Second", Type: "int", HasDefault: true, DefaultExpr: "2", Visibility: descriptor.Public},
			{Name: "Third", Type: "string", HasDefault: true, Visibility: descriptor.Public},
		},
	}
}

func TestExpand(t *testing.T) {
	store := storeWith(t, calcDecl(), privateDecl(), structDecl(), tupleDecl())
	expander := NewExpander(store)
	pos := diagnostics.Position{File: "calls.txt", Line: 1}

	tests := []struct {
		name       string
		src        string
		wantCode   string
		wantImport string
	}{
		{
			name:       "defaults filled in",
			src:        "Calculate(5, 5)",
			wantCode:   "calc.Calculate(5, 5, true, *new(option.Option[int]))",
			wantImport: "example.com/mod/calc",
		},
		{
			name:       "named reordering normalized",
			src:        "Calculate(rhs = 5, lhs = 15, add = false)",
			wantCode:   "calc.Calculate(15, 5, false, *new(option.Option[int]))",
			wantImport: "example.com/mod/calc",
		},
		{
			name:       "named default override",
			src:        "Calculate(5, 5, divideResultBy = option.Some(2))",
			wantCode:   "calc.Calculate(5, 5, true, option.Some(2))",
			wantImport: "example.com/mod/calc",
		},
		{
			name:       "private item expands unqualified",
			src:        "helper(3)",
			wantCode:   "helper(3, 1)",
			wantImport: "",
		},
		{
			name:       "named-field aggregate",
			src:        "Window(reader, Idx = 1)",
			wantCode:   "view.Window{Inner: reader, Idx: 1, Len: *new(int)}",
			wantImport: "example.com/mod/view",
		},
		{
			name:       "tuple aggregate with trailing defaults omitted",
			src:        "Pair(value)",
			wantCode:   `pair.Pair(value, 2, *new(string))`,
			wantImport: "example.com/mod/pair",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, derr := expander.Expand(tt.src, pos)
			if derr != nil {
				t.Fatalf("Expand() failed: %v", derr)
			}
			if res.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", res.Code, tt.wantCode)
			}
			if res.ImportPath != tt.wantImport {
				t.Errorf("import = %q, want %q", res.ImportPath, tt.wantImport)
			}
		})
	}
}

func TestExpandRejects(t *testing.T) {
	store := storeWith(t, calcDecl())
	expander := NewExpander(store)
	pos := diagnostics.Position{File: "calls.txt", Line: 9}

	tests := []struct {
		name    string
		src     string
		wantMsg string
	}{
		{"unknown item", "Missing(1)", "no generated rules"},
		{"shape outside the grammar", "Calculate(5)", "does not accept"},
		{"unknown key", "Calculate(5, 5, subtract = true)", `no parameter "subtract"`},
		{"duplicate key", "Calculate(lhs = 1, lhs = 2, rhs = 3)", "duplicate named argument"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, derr := expander.Expand(tt.src, pos)
			if derr == nil {
				t.Fatal("Expand() succeeded, want C001")
			}
			if derr.Code != diagnostics.ErrC001 {
				t.Errorf("code = %s, want C001", derr.Code)
			}
			if !strings.Contains(derr.Message, tt.wantMsg) {
				t.Errorf("message %q does not contain %q", derr.Message, tt.wantMsg)
			}
		})
	}
}

func TestExpandAll(t *testing.T) {
	store := storeWith(t, calcDecl())
	expander := NewExpander(store)

	out, derr := expander.ExpandAll([]string{
		"Calculate(1, 2)",
		"Calculate(3, 4, add = false)",
	}, "calls.txt")
	if derr != nil {
		t.Fatalf("ExpandAll() failed: %v", derr)
	}
	if len(out) != 2 {
		t.Fatalf("got %d expansions, want 2", len(out))
	}
	if out[0].Source != "Calculate(1, 2)" {
		t.Errorf("source[0] = %q", out[0].Source)
	}

	_, derr = expander.ExpandAll([]string{"Calculate(1, 2)", "nope"}, "calls.txt")
	if derr == nil {
		t.Fatal("ExpandAll() succeeded with a bad line")
	}
	if derr.Pos.Line != 2 {
		t.Errorf("failure attributed to line %d, want 2", derr.Pos.Line)
	}
}
