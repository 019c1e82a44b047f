package permute

import (
	"fmt"
	"sort"
	"strings"

	"github.com/defcall/defcall/internal/signature"
)

// Entry is one compiled call form: a matchable shape plus the omissions
// its binder substitutes. Named positions are kept in ascending
// declaration order; Spellings records how many ordered variants the
// entry covers under literal-order matching.
type Entry struct {
	Prefix    int    `json:"prefix"`
	Named     []int  `json:"named,omitempty"`
	Omitted   []int  `json:"omitted,omitempty"`
	Spellings uint64 `json:"spellings"`
}

// Table is the compiled dispatch table for one signature: exhaustive over
// the call grammar, duplicate-free, indexed by prefix length and sorted
// named-key set.
type Table struct {
	Sig     *signature.Signature
	Entries []*Entry

	index map[string]*Entry
}

// Compile builds the table for sig. The enumerator produces each
// (prefix, named set) pair exactly once; a duplicate key means the
// enumerator is broken, so it panics rather than returning an error.
func Compile(sig *signature.Signature) *Table {
	forms := NewEnumerator(sig).Forms()
	t := &Table{
		Sig:     sig,
		Entries: make([]*Entry, 0, len(forms)),
		index:   make(map[string]*Entry, len(forms)),
	}
	for _, f := range forms {
		e := &Entry{
			Prefix:    f.Prefix,
			Named:     f.Named,
			Omitted:   f.Omitted,
			Spellings: Factorial(len(f.Named)),
		}
		key := shapeKey(e.Prefix, namesAt(sig, e.Named))
		if _, dup := t.index[key]; dup {
			panic("permute: duplicate call form " + key + " for " + sig.Name)
		}
		t.index[key] = e
		t.Entries = append(t.Entries, e)
	}
	return t
}

// Load rebuilds a table from a signature and its persisted entries.
func Load(sig *signature.Signature, entries []*Entry) *Table {
	t := &Table{
		Sig:     sig,
		Entries: entries,
		index:   make(map[string]*Entry, len(entries)),
	}
	for _, e := range entries {
		t.index[shapeKey(e.Prefix, namesAt(sig, e.Named))] = e
	}
	return t
}

// Lookup finds the entry matching a prefix length and a set of named keys.
// Returns nil when the shape is not part of the call grammar.
func (t *Table) Lookup(prefix int, names []string) *Entry {
	return t.index[shapeKey(prefix, names)]
}

// Size returns the number of compiled entries.
func (t *Table) Size() int { return len(t.Entries) }

// OrderedFormCount returns the total ordered spellings the table covers.
func (t *Table) OrderedFormCount() uint64 {
	var total uint64
	for _, e := range t.Entries {
		total += e.Spellings
	}
	return total
}

// shapeKey canonicalizes a call shape: prefix length plus the named keys
// sorted lexically. Sorting is what collapses the factorial spellings of
// one named set onto a single entry.
func shapeKey(prefix int, names []string) string {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)
	return fmt.Sprintf("%d|%s", prefix, strings.Join(sorted, ","))
}

// namesAt maps declaration positions to parameter names.
func namesAt(sig *signature.Signature, positions []int) []string {
	names := make([]string, len(positions))
	for i, pos := range positions {
		names[i] = sig.Params[pos].Name
	}
	return names
}
