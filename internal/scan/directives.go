// Package scan discovers annotated declarations in Go sources. A
// declaration opts in with a //defcall:generate directive in its doc
// comment; function parameter defaults ride on //defcall:default lines and
// struct field defaults on `defcall:"..."` tags.
package scan

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"reflect"
	"strconv"
	"strings"

	"github.com/defcall/defcall/internal/descriptor"
)

// directivePrefix introduces a scan directive inside a doc comment.
const directivePrefix = "//defcall:"

// directive is one parsed //defcall: line.
type directive struct {
	cmd   string
	args  map[string]string
	flags []string
	// rest is the raw remainder, kept for commands (default) whose
	// argument may contain spaces.
	rest string
}

// parseDirective parses a comment line into a directive, or nil when the
// line is not a defcall directive.
func parseDirective(line string) *directive {
	if !strings.HasPrefix(line, directivePrefix) {
		return nil
	}
	body := line[len(directivePrefix):]

	cmd := body
	rest := ""
	if i := strings.IndexByte(body, ' '); i >= 0 {
		cmd, rest = body[:i], strings.TrimSpace(body[i+1:])
	}

	d := &directive{cmd: cmd, args: map[string]string{}, rest: rest}
	for _, field := range strings.Fields(rest) {
		if k, v, ok := strings.Cut(field, "="); ok {
			d.args[k] = v
		} else {
			d.flags = append(d.flags, field)
		}
	}
	return d
}

func (d *directive) hasFlag(name string) bool {
	for _, f := range d.flags {
		if f == name {
			return true
		}
	}
	return false
}

// findDirective returns the first directive with the given command in a
// doc comment group.
func findDirective(doc *ast.CommentGroup, cmd string) *directive {
	if doc == nil {
		return nil
	}
	for _, c := range doc.List {
		if d := parseDirective(c.Text); d != nil && d.cmd == cmd {
			return d
		}
	}
	return nil
}

// paramDefault is one //defcall:default line: a parameter name and its
// default expression ("" means zero construction).
type paramDefault struct {
	name string
	expr string
}

// defaultLines collects the //defcall:default directives of a doc comment.
// The expression is everything after the first '=', so it may contain
// spaces and commas.
func defaultLines(doc *ast.CommentGroup) []paramDefault {
	if doc == nil {
		return nil
	}
	var out []paramDefault
	for _, c := range doc.List {
		d := parseDirective(c.Text)
		if d == nil || d.cmd != "default" {
			continue
		}
		name, expr, _ := strings.Cut(d.rest, "=")
		out = append(out, paramDefault{
			name: strings.TrimSpace(name),
			expr: strings.TrimSpace(expr),
		})
	}
	return out
}

// ExtractFile collects the annotated declarations of one parsed file.
// pkgPath is the import path of the enclosing package; it becomes the
// default scope token when the directive names none.
func ExtractFile(pkgPath string, fset *token.FileSet, file *ast.File) ([]*descriptor.Declaration, error) {
	var decls []*descriptor.Declaration

	for _, raw := range file.Decls {
		switch decl := raw.(type) {
		case *ast.FuncDecl:
			d, err := extractFunc(pkgPath, fset, decl)
			if err != nil {
				return nil, err
			}
			if d != nil {
				decls = append(decls, d)
			}

		case *ast.GenDecl:
			if decl.Tok != token.TYPE {
				continue
			}
			for _, spec := range decl.Specs {
				ts, ok := spec.(*ast.TypeSpec)
				if !ok {
					continue
				}
				// The directive may sit on the type spec or, for single-spec
				// declarations, on the gen decl itself.
				dir := findDirective(ts.Doc, "generate")
				doc := ts.Doc
				if dir == nil {
					dir = findDirective(decl.Doc, "generate")
					doc = decl.Doc
				}
				if dir == nil {
					continue
				}
				d, err := extractStruct(pkgPath, fset, ts, dir, doc)
				if err != nil {
					return nil, err
				}
				decls = append(decls, d)
			}
		}
	}

	return decls, nil
}

func extractFunc(pkgPath string, fset *token.FileSet, fn *ast.FuncDecl) (*descriptor.Declaration, error) {
	dir := findDirective(fn.Doc, "generate")
	if dir == nil {
		return nil, nil
	}
	pos := fset.Position(fn.Pos())

	if fn.Recv != nil {
		return nil, fmt.Errorf("%s: %s: methods are not supported", pos, fn.Name.Name)
	}

	defaults := make(map[string]paramDefault)
	for _, pd := range defaultLines(fn.Doc) {
		if pd.name == "" {
			return nil, fmt.Errorf("%s: %s: defcall:default needs a parameter name", pos, fn.Name.Name)
		}
		defaults[pd.name] = pd
	}

	d := &descriptor.Declaration{
		Name:       fn.Name.Name,
		Kind:       descriptor.Function,
		Scope:      scopeFor(dir, pkgPath),
		Visibility: visibilityFor(fn.Name.Name, pkgPath),
		SourceFile: pos.Filename,
		Line:       pos.Line,
	}

	for _, field := range fn.Type.Params.List {
		if _, variadic := field.Type.(*ast.Ellipsis); variadic {
			return nil, fmt.Errorf("%s: %s: variadic parameters are not supported", pos, fn.Name.Name)
		}
		if len(field.Names) == 0 {
			return nil, fmt.Errorf("%s: %s: parameters must be named", pos, fn.Name.Name)
		}
		typeStr := types.ExprString(field.Type)
		for _, name := range field.Names {
			p := descriptor.Param{
				Name:       name.Name,
				Type:       typeStr,
				Visibility: descriptor.Public,
			}
			if pd, ok := defaults[name.Name]; ok {
				p.HasDefault = true
				p.DefaultExpr = pd.expr
				delete(defaults, name.Name)
			}
			d.Params = append(d.Params, p)
		}
	}

	for name := range defaults {
		return nil, fmt.Errorf("%s: %s: defcall:default names unknown parameter %q", pos, fn.Name.Name, name)
	}

	return d, nil
}

func extractStruct(pkgPath string, fset *token.FileSet, ts *ast.TypeSpec, dir *directive, doc *ast.CommentGroup) (*descriptor.Declaration, error) {
	pos := fset.Position(ts.Pos())

	st, ok := ts.Type.(*ast.StructType)
	if !ok {
		return nil, fmt.Errorf("%s: %s: defcall:generate on a non-struct type", pos, ts.Name.Name)
	}

	kind := descriptor.NamedFields
	if dir.hasFlag("tuple") {
		kind = descriptor.TupleFields
	}

	d := &descriptor.Declaration{
		Name:       ts.Name.Name,
		Kind:       kind,
		Scope:      scopeFor(dir, pkgPath),
		Visibility: visibilityFor(ts.Name.Name, pkgPath),
		SourceFile: pos.Filename,
		Line:       pos.Line,
	}

	for _, field := range st.Fields.List {
		if len(field.Names) == 0 {
			return nil, fmt.Errorf("%s: %s: embedded fields are not supported", pos, ts.Name.Name)
		}
		typeStr := types.ExprString(field.Type)
		defaulted, expr, err := fieldDefault(field)
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %v", pos, ts.Name.Name, err)
		}
		for _, name := range field.Names {
			d.Params = append(d.Params, descriptor.Param{
				Name:        name.Name,
				Type:        typeStr,
				HasDefault:  defaulted,
				DefaultExpr: expr,
				Visibility:  visibilityFor(name.Name, pkgPath),
			})
		}
	}

	return d, nil
}

// fieldDefault reads a struct field's `defcall:"..."` tag: "zero" for zero
// construction, "default=<expr>" for an explicit expression.
func fieldDefault(field *ast.Field) (bool, string, error) {
	if field.Tag == nil {
		return false, "", nil
	}
	raw, err := strconv.Unquote(field.Tag.Value)
	if err != nil {
		return false, "", fmt.Errorf("bad struct tag %s: %v", field.Tag.Value, err)
	}
	tag := reflect.StructTag(raw).Get("defcall")
	switch {
	case tag == "":
		return false, "", nil
	case tag == "zero":
		return true, "", nil
	case strings.HasPrefix(tag, "default="):
		expr := strings.TrimPrefix(tag, "default=")
		if expr == "" {
			return false, "", fmt.Errorf("empty default expression in defcall tag")
		}
		return true, expr, nil
	}
	return false, "", fmt.Errorf("unknown defcall tag %q (want zero or default=<expr>)", tag)
}

// scopeFor picks the scope token: an explicit scope= argument wins,
// otherwise the package's own import path.
func scopeFor(dir *directive, pkgPath string) string {
	if s, ok := dir.args["scope"]; ok {
		return s
	}
	return pkgPath
}

// visibilityFor derives declared visibility from Go exportedness:
// unexported names are private; exported names inside an internal/
// subtree are restricted; everything else is public.
func visibilityFor(name, pkgPath string) descriptor.Visibility {
	if !ast.IsExported(name) {
		return descriptor.Private
	}
	if pkgPath == "internal" ||
		strings.HasPrefix(pkgPath, "internal/") ||
		strings.Contains(pkgPath, "/internal/") ||
		strings.HasSuffix(pkgPath, "/internal") {
		return descriptor.Restricted
	}
	return descriptor.Public
}
