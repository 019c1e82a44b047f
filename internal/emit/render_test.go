package emit

import (
	"strings"
	"testing"
)

func TestRender(t *testing.T) {
	expansions := []Expansion{
		{Source: "Calculate(5, 5)", Code: "calc.Calculate(5, 5, true)", ImportPath: "example.com/mod/calc"},
		{Source: "Calculate(1, 2)", Code: "calc.Calculate(1, 2, true)", ImportPath: "example.com/mod/calc"},
		{Source: "helper(x)", Code: "helper(x, *new(int))", ImportPath: ""},
		{Source: "Load(p)", Code: "store.Load(p)", ImportPath: "example.com/mod/internal/store"},
	}

	out, err := Render(expansions)
	if err != nil {
		t.Fatalf("Render() failed: %v", err)
	}

	if !strings.HasPrefix(out, "// Code generated by defcall. DO NOT EDIT.") {
		t.Errorf("output missing generated-code header:\n%s", out)
	}

	// Imports are deduplicated and sorted by path.
	calcIdx := strings.Index(out, `// import calc "example.com/mod/calc"`)
	storeIdx := strings.Index(out, `// import store "example.com/mod/internal/store"`)
	if calcIdx < 0 || storeIdx < 0 {
		t.Fatalf("output missing import lines:\n%s", out)
	}
	if calcIdx > storeIdx {
		t.Error("imports are not sorted by path")
	}
	if strings.Count(out, "example.com/mod/calc") != 1 {
		t.Error("duplicate import path in output")
	}

	for _, x := range expansions {
		if !strings.Contains(out, x.Code) {
			t.Errorf("output missing expansion %q:\n%s", x.Code, out)
		}
	}
}

func TestRenderNoImports(t *testing.T) {
	out, err := Render([]Expansion{
		{Source: "helper(1)", Code: "helper(1, *new(int))", ImportPath: ""},
	})
	if err != nil {
		t.Fatalf("Render() failed: %v", err)
	}
	if strings.Contains(out, "// import") {
		t.Errorf("private-only output should carry no import lines:\n%s", out)
	}
	if !strings.Contains(out, "helper(1, *new(int))") {
		t.Errorf("output missing expansion:\n%s", out)
	}
}
