// Package permute derives every legal call shape for a signature and
// compiles them into a dispatch table. Callers supply a contiguous
// positional prefix followed by named arguments; trailing defaulted
// parameters may be omitted.
//
// Matching canonicalizes named arguments by sorting on key, so the table
// is indexed by (prefix length, named-key set) and its size grows with the
// subset count rather than factorially with the named-set size. The full
// ordered enumeration (every spelling of every named set) stays available
// as a streaming operation for dumps and count checks.
package permute

import (
	"strings"

	"github.com/defcall/defcall/internal/signature"
)

// CallForm is one legal syntactic shape a caller may use: a positional
// prefix of length Prefix, the named positions in call order, and the
// defaulted positions omitted entirely.
type CallForm struct {
	Prefix  int
	Named   []int
	Omitted []int
}

// Pattern renders the form as a caller would write it, with value slots
// blanked out. Used for table dumps.
func (f CallForm) Pattern(sig *signature.Signature) string {
	var b strings.Builder
	b.WriteString(sig.Name)
	b.WriteByte('(')
	for i := 0; i < f.Prefix; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('_')
	}
	for i, pos := range f.Named {
		if f.Prefix > 0 || i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(sig.Params[pos].Name)
		b.WriteString(" = _")
	}
	b.WriteByte(')')
	return b.String()
}

// Factorial returns n! for the small n that occur in named sets.
// Saturates at the largest value representable in uint64 (n > 20 cannot
// occur in practice; the soft parameter ceiling is far below it).
func Factorial(n int) uint64 {
	if n > 20 {
		return ^uint64(0)
	}
	out := uint64(1)
	for i := 2; i <= n; i++ {
		out *= uint64(i)
	}
	return out
}
