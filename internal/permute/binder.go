package permute

import (
	"fmt"
	"strings"

	"github.com/defcall/defcall/internal/diagnostics"
)

// NamedArg is one key = value pair as written at the call site.
// Values are opaque token spans; nothing here parses expressions.
type NamedArg struct {
	Name  string
	Value string
}

// Args is a split call site: the positional prefix values and the named
// arguments in literal order.
type Args struct {
	Positional []string
	Named      []NamedArg
}

// Bind matches the supplied arguments against the table and reconstructs
// the full declaration-order argument list: supplied values at bound
// positions, the declared default (expression or zero construction) at
// omitted positions. The result always has exactly N values.
//
// Any shape outside the grammar fails with C001: unknown key, duplicate
// key, key for a positionally bound parameter, count beyond N, or a
// required parameter left unsupplied.
func (t *Table) Bind(args Args, pos diagnostics.Position) ([]string, *diagnostics.DiagnosticError) {
	sig := t.Sig
	n := sig.Len()
	prefix := len(args.Positional)

	if prefix+len(args.Named) > n {
		return nil, diagnostics.NewError(diagnostics.ErrC001, pos,
			fmt.Sprintf("%s takes at most %d arguments, got %d", sig.Name, n, prefix+len(args.Named)))
	}

	names := make([]string, 0, len(args.Named))
	values := make(map[string]string, len(args.Named))
	for _, na := range args.Named {
		if _, dup := values[na.Name]; dup {
			return nil, diagnostics.NewError(diagnostics.ErrC001, pos,
				fmt.Sprintf("duplicate named argument %q", na.Name))
		}
		param, ok := sig.ParamNamed(na.Name)
		if !ok {
			return nil, diagnostics.NewError(diagnostics.ErrC001, pos,
				fmt.Sprintf("%s has no parameter %q", sig.Name, na.Name))
		}
		if param.Position < prefix {
			return nil, diagnostics.NewError(diagnostics.ErrC001, pos,
				fmt.Sprintf("parameter %q is already bound positionally", na.Name))
		}
		names = append(names, na.Name)
		values[na.Name] = na.Value
	}

	entry := t.Lookup(prefix, names)
	if entry == nil {
		return nil, diagnostics.NewError(diagnostics.ErrC001, pos,
			fmt.Sprintf("%s does not accept %d positional arguments with named set [%s]",
				sig.Name, prefix, strings.Join(names, ", ")))
	}

	out := make([]string, n)
	copy(out, args.Positional)
	for _, p := range entry.Named {
		out[p] = values[sig.Params[p].Name]
	}
	for _, p := range entry.Omitted {
		out[p] = sig.Params[p].DefaultValue()
	}
	return out, nil
}
