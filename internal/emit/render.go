package emit

import (
	"fmt"
	"sort"
	"strings"
	"text/template"

	"github.com/defcall/defcall/internal/qualify"
)

// Expansion is one expanded call site.
type Expansion struct {
	// Source is the call as the author wrote it.
	Source string
	// Code is the emitted canonical invocation.
	Code string
	// ImportPath is the package the invocation references ("" for
	// unqualified private references).
	ImportPath string
}

type importEntry struct {
	Path  string
	Alias string
}

// Render produces the expansion output handed back to the host build:
// the collected import requirements followed by one canonical invocation
// per call site.
func Render(expansions []Expansion) (string, error) {
	seen := make(map[string]bool)
	var imports []importEntry
	for _, x := range expansions {
		if x.ImportPath == "" || seen[x.ImportPath] {
			continue
		}
		seen[x.ImportPath] = true
		imports = append(imports, importEntry{
			Path:  x.ImportPath,
			Alias: qualify.ImportAlias(x.ImportPath),
		})
	}
	sort.Slice(imports, func(i, j int) bool { return imports[i].Path < imports[j].Path })

	tmpl, err := template.New("expansion").Parse(expansionTemplate)
	if err != nil {
		return "", fmt.Errorf("parsing expansion template: %w", err)
	}

	data := struct {
		Imports    []importEntry
		Expansions []Expansion
	}{imports, expansions}

	var buf strings.Builder
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing expansion template: %w", err)
	}
	return buf.String(), nil
}

const expansionTemplate = `// Code generated by defcall. DO NOT EDIT.
{{- if .Imports}}
//
{{- range .Imports}}
// import {{.Alias}} "{{.Path}}"
{{- end}}
{{- end}}
{{range .Expansions}}
{{.Code}}
{{- end}}
`
