// Package emit produces the final invocation token streams. By the time a
// call reaches this package every argument has been resolved into
// declaration order; emission never reorders or renames anything.
package emit

import (
	"fmt"
	"strings"

	"github.com/defcall/defcall/internal/descriptor"
	"github.com/defcall/defcall/internal/qualify"
	"github.com/defcall/defcall/internal/signature"
)

// Canonical renders the single positional invocation of the underlying
// item: a call expression for functions and tuple constructors, a
// field-by-field composite literal for named-field aggregates.
func Canonical(sig *signature.Signature, path *qualify.QualifiedPath, values []string) (string, error) {
	if len(values) != sig.Len() {
		return "", fmt.Errorf("emit %s: resolved %d arguments, signature declares %d",
			sig.Name, len(values), sig.Len())
	}

	switch sig.Kind {
	case descriptor.Function, descriptor.TupleFields:
		return path.Ref() + "(" + strings.Join(values, ", ") + ")", nil

	case descriptor.NamedFields:
		var b strings.Builder
		b.WriteString(path.Ref())
		b.WriteByte('{')
		for i, p := range sig.Params {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(p.Name)
			b.WriteString(": ")
			b.WriteString(values[i])
		}
		b.WriteByte('}')
		return b.String(), nil
	}

	return "", fmt.Errorf("emit %s: unknown kind %q", sig.Name, sig.Kind)
}
