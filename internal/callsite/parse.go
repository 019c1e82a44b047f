// Package callsite turns authored call text into canonical invocations.
// Parsing here is deliberately shallow: arguments are opaque token spans
// split on top-level commas, and only the key of a `key = value` pair is
// interpreted. Everything else is the binder's job.
package callsite

import (
	"fmt"
	"strings"

	"github.com/defcall/defcall/internal/diagnostics"
	"github.com/defcall/defcall/internal/permute"
)

// Parse splits one call site of the form `Name(arg, key = value, ...)`
// into the item name and its argument shape. Argument values keep their
// exact spelling, trimmed of surrounding space.
func Parse(src string, pos diagnostics.Position) (string, permute.Args, *diagnostics.DiagnosticError) {
	var args permute.Args

	s := strings.TrimSpace(src)
	open := strings.IndexByte(s, '(')
	if open <= 0 || !strings.HasSuffix(s, ")") {
		return "", args, diagnostics.NewError(diagnostics.ErrC001, pos,
			fmt.Sprintf("%q is not a call of the form Name(...)", src))
	}

	name := strings.TrimSpace(s[:open])
	if !isIdentifier(name) {
		return "", args, diagnostics.NewError(diagnostics.ErrC001, pos,
			fmt.Sprintf("%q is not a valid item name", name))
	}

	body := s[open+1 : len(s)-1]
	pieces, err := splitTopLevel(body)
	if err != nil {
		return "", args, diagnostics.NewError(diagnostics.ErrC001, pos, err.Error())
	}

	for _, piece := range pieces {
		piece = strings.TrimSpace(piece)
		if piece == "" {
			return "", args, diagnostics.NewError(diagnostics.ErrC001, pos,
				"empty argument in call")
		}

		key, value, named := splitNamed(piece)
		if named {
			args.Named = append(args.Named, permute.NamedArg{Name: key, Value: value})
			continue
		}
		if len(args.Named) > 0 {
			return "", args, diagnostics.NewError(diagnostics.ErrC001, pos,
				fmt.Sprintf("positional argument %q after named arguments", piece))
		}
		args.Positional = append(args.Positional, piece)
	}

	return name, args, nil
}

// splitTopLevel splits on commas outside brackets and string or rune
// literals. Returns no pieces for an empty body.
func splitTopLevel(body string) ([]string, error) {
	if strings.TrimSpace(body) == "" {
		return nil, nil
	}

	var pieces []string
	depth := 0
	start := 0
	var quote byte // 0 when outside a literal

	for i := 0; i < len(body); i++ {
		c := body[i]

		if quote != 0 {
			switch c {
			case '\\':
				i++ // skip the escaped byte
			case quote:
				quote = 0
			}
			continue
		}

		switch c {
		case '"', '\'', '`':
			quote = c
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("unbalanced %q in arguments", string(c))
			}
		case ',':
			if depth == 0 {
				pieces = append(pieces, body[start:i])
				start = i + 1
			}
		}
	}

	if quote != 0 {
		return nil, fmt.Errorf("unterminated %q literal in arguments", string(quote))
	}
	if depth != 0 {
		return nil, fmt.Errorf("unbalanced brackets in arguments")
	}

	pieces = append(pieces, body[start:])
	return pieces, nil
}

// splitNamed detects a `key = value` pair: a top-level '=' that is not
// part of a comparison operator, with a bare identifier on its left.
func splitNamed(piece string) (key, value string, ok bool) {
	depth := 0
	var quote byte

	for i := 0; i < len(piece); i++ {
		c := piece[i]

		if quote != 0 {
			switch c {
			case '\\':
				i++
			case quote:
				quote = 0
			}
			continue
		}

		switch c {
		case '"', '\'', '`':
			quote = c
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case '=':
			if depth != 0 {
				continue
			}
			if i+1 < len(piece) && piece[i+1] == '=' {
				i++ // ==
				continue
			}
			if i > 0 {
				switch piece[i-1] {
				case '=', '!', '<', '>':
					continue
				}
			}
			key = strings.TrimSpace(piece[:i])
			value = strings.TrimSpace(piece[i+1:])
			if isIdentifier(key) && value != "" {
				return key, value, true
			}
			return "", "", false
		}
	}
	return "", "", false
}

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
