package scan

import (
	"fmt"
	"sort"

	"golang.org/x/tools/go/packages"

	"github.com/defcall/defcall/internal/descriptor"
)

// Scanner loads Go packages and extracts their annotated declarations.
type Scanner struct {
	// Dir is the working directory for package loading.
	Dir string
}

// New creates a scanner rooted at dir.
func New(dir string) *Scanner {
	return &Scanner{Dir: dir}
}

// Scan loads the given package patterns (./... style) and returns every
// annotated declaration found, ordered by source position.
func (s *Scanner) Scan(patterns ...string) ([]*descriptor.Declaration, error) {
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}

	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedCompiledGoFiles | packages.NeedSyntax,
		Dir:  s.Dir,
	}
	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("loading packages: %w", err)
	}

	var decls []*descriptor.Declaration
	for _, pkg := range pkgs {
		for _, perr := range pkg.Errors {
			return nil, fmt.Errorf("loading %s: %s", pkg.PkgPath, perr.Msg)
		}
		for _, file := range pkg.Syntax {
			found, err := ExtractFile(pkg.PkgPath, pkg.Fset, file)
			if err != nil {
				return nil, err
			}
			decls = append(decls, found...)
		}
	}

	sort.Slice(decls, func(i, j int) bool {
		if decls[i].SourceFile != decls[j].SourceFile {
			return decls[i].SourceFile < decls[j].SourceFile
		}
		return decls[i].Line < decls[j].Line
	})
	return decls, nil
}
