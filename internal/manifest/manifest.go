// Package manifest parses and validates defcall.yaml, the declarative
// front end for items that cannot carry source directives (or whose
// authors prefer one file of record).
//
// The manifest declares callables: name, kind, defining package (the
// scope token), visibility and the ordered parameter list with optional
// defaults. Structural rules (defaults trailing, fields visible enough)
// are not enforced here; they belong to the signature stage so that both
// front ends share one set of diagnostics.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/defcall/defcall/internal/descriptor"
)

// Manifest is the top-level defcall.yaml document.
type Manifest struct {
	Declarations []Decl `yaml:"declarations"`

	// path the manifest was loaded from, for error messages.
	path string
}

// Decl declares one callable.
type Decl struct {
	// Name is the item's declared identifier.
	Name string `yaml:"name"`

	// Kind is "function", "struct" (named fields) or "tuple" (positional
	// constructor).
	Kind string `yaml:"kind"`

	// Package is the import path of the defining package, the scope token
	// embedded in generated references. Omit only for private items.
	Package string `yaml:"package,omitempty"`

	// Visibility is "private", "restricted" or "public". Defaults to
	// public when Package is set, private otherwise.
	Visibility string `yaml:"visibility,omitempty"`

	// Params is the ordered parameter (or field) list.
	Params []ParamSpec `yaml:"params"`
}

// ParamSpec declares one parameter or field.
type ParamSpec struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`

	// Default is an explicit default expression. Mutually exclusive with
	// Zero.
	Default string `yaml:"default,omitempty"`

	// Zero marks the parameter defaulted to its type's zero construction.
	Zero bool `yaml:"zero,omitempty"`

	// Visibility overrides the field visibility derived from the name's
	// exportedness. Only meaningful on struct and tuple fields.
	Visibility string `yaml:"visibility,omitempty"`
}

// Load reads and parses a defcall.yaml file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse parses manifest content from bytes. The path argument is used
// only for error messages.
func Parse(data []byte, path string) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	m.path = path
	if err := m.validate(); err != nil {
		return nil, err
	}
	m.setDefaults()
	return &m, nil
}

// Find searches for defcall.yaml starting from dir and walking up parent
// directories. Returns "" (and nil error) when no manifest exists.
func Find(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}

	for {
		for _, name := range []string{"defcall.yaml", "defcall.yml"} {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// validate checks the manifest for structural errors.
func (m *Manifest) validate() error {
	if len(m.Declarations) == 0 {
		return fmt.Errorf("%s: no declarations defined", m.path)
	}

	seen := make(map[string]bool) // "package.name" conflict detection

	for i, d := range m.Declarations {
		if d.Name == "" {
			return fmt.Errorf("%s: declarations[%d]: name is required", m.path, i)
		}
		if !isIdentifier(d.Name) {
			return fmt.Errorf("%s: declarations[%d]: name %q is not an identifier", m.path, i, d.Name)
		}
		if _, err := descriptor.ParseKind(d.Kind); err != nil {
			return fmt.Errorf("%s: declarations[%d] (%s): %v", m.path, i, d.Name, err)
		}
		if d.Visibility != "" {
			if _, err := descriptor.ParseVisibility(d.Visibility); err != nil {
				return fmt.Errorf("%s: declarations[%d] (%s): %v", m.path, i, d.Name, err)
			}
		}

		key := d.Package + "." + d.Name
		if seen[key] {
			return fmt.Errorf("%s: declarations[%d]: %q declared twice", m.path, i, key)
		}
		seen[key] = true

		for j, p := range d.Params {
			if p.Name == "" {
				return fmt.Errorf("%s: declarations[%d].params[%d] (%s): name is required", m.path, i, j, d.Name)
			}
			if !isIdentifier(p.Name) {
				return fmt.Errorf("%s: declarations[%d].params[%d] (%s): name %q is not an identifier", m.path, i, j, d.Name, p.Name)
			}
			if p.Type == "" {
				return fmt.Errorf("%s: declarations[%d].params[%d] (%s): type is required", m.path, i, j, d.Name)
			}
			if p.Default != "" && p.Zero {
				return fmt.Errorf("%s: declarations[%d].params[%d] (%s): default and zero are mutually exclusive", m.path, i, j, d.Name)
			}
			if p.Visibility != "" {
				if _, err := descriptor.ParseVisibility(p.Visibility); err != nil {
					return fmt.Errorf("%s: declarations[%d].params[%d] (%s): %v", m.path, i, j, d.Name, err)
				}
			}
		}
	}

	return nil
}

// setDefaults fills in omitted visibilities.
func (m *Manifest) setDefaults() {
	for i := range m.Declarations {
		d := &m.Declarations[i]
		if d.Visibility == "" {
			if d.Package != "" {
				d.Visibility = "public"
			} else {
				d.Visibility = "private"
			}
		}
		for j := range d.Params {
			if d.Params[j].Visibility == "" {
				d.Params[j].Visibility = descriptor.VisibilityForName(d.Params[j].Name).String()
			}
		}
	}
}

// Descriptors maps the manifest into raw declaration descriptors.
// Call after Parse; visibilities are guaranteed parseable by validate.
func (m *Manifest) Descriptors() []*descriptor.Declaration {
	out := make([]*descriptor.Declaration, 0, len(m.Declarations))
	for i, d := range m.Declarations {
		kind, _ := descriptor.ParseKind(d.Kind)
		vis, _ := descriptor.ParseVisibility(d.Visibility)

		decl := &descriptor.Declaration{
			Name:       d.Name,
			Kind:       kind,
			Scope:      d.Package,
			Visibility: vis,
			SourceFile: m.path,
			Line:       i + 1, // declaration index; yaml nodes carry no positions here
		}
		for _, p := range d.Params {
			pvis, _ := descriptor.ParseVisibility(p.Visibility)
			decl.Params = append(decl.Params, descriptor.Param{
				Name:        p.Name,
				Type:        p.Type,
				HasDefault:  p.Default != "" || p.Zero,
				DefaultExpr: p.Default,
				Visibility:  pvis,
			})
		}
		out = append(out, decl)
	}
	return out
}

// isIdentifier reports whether s is a plain Go identifier.
func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_',
			r >= 'a' && r <= 'z',
			r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
