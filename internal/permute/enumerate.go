package permute

import "github.com/defcall/defcall/internal/signature"

// Enumerator walks the legal call shapes of one signature.
//
// For each prefix length p in 0..N, the required positions >= p must be
// supplied by name, and each defaulted position >= max(p, R) is either
// named or omitted. Every subset choice over the defaulted candidates
// yields one canonical form; every ordering of its named set is a distinct
// spelling of that form.
type Enumerator struct {
	sig *signature.Signature
}

// NewEnumerator creates an enumerator over sig's call shapes.
func NewEnumerator(sig *signature.Signature) *Enumerator {
	return &Enumerator{sig: sig}
}

// Forms returns the canonical forms, one per (prefix, omission) choice,
// with named positions in ascending declaration order.
func (e *Enumerator) Forms() []CallForm {
	n := e.sig.Len()
	r := e.sig.Required()

	var forms []CallForm
	for p := 0; p <= n; p++ {
		var mandatory []int
		for i := p; i < r; i++ {
			mandatory = append(mandatory, i)
		}

		candStart := p
		if r > candStart {
			candStart = r
		}
		var cand []int
		for i := candStart; i < n; i++ {
			cand = append(cand, i)
		}

		for mask := 0; mask < 1<<len(cand); mask++ {
			named := append([]int(nil), mandatory...)
			var omitted []int
			for bit, pos := range cand {
				if mask>>bit&1 == 1 {
					named = append(named, pos)
				} else {
					omitted = append(omitted, pos)
				}
			}
			forms = append(forms, CallForm{Prefix: p, Named: named, Omitted: omitted})
		}
	}
	return forms
}

// Ordered streams every ordered spelling of every form to visit, stopping
// early when visit returns false. The spelling count is factorial in the
// named-set size; callers dumping tables should cap their visits.
func (e *Enumerator) Ordered(visit func(CallForm) bool) {
	for _, f := range e.Forms() {
		if !visitPermutations(f, visit) {
			return
		}
	}
}

// OrderedCount returns the total number of ordered spellings,
// sum over forms of |named|!.
func (e *Enumerator) OrderedCount() uint64 {
	var total uint64
	for _, f := range e.Forms() {
		total += Factorial(len(f.Named))
	}
	return total
}

// visitPermutations emits f once per permutation of its named set
// (Heap's algorithm). An empty named set yields exactly one visit.
func visitPermutations(f CallForm, visit func(CallForm) bool) bool {
	names := append([]int(nil), f.Named...)

	var generate func(k int) bool
	generate = func(k int) bool {
		if k <= 1 {
			spelled := CallForm{
				Prefix:  f.Prefix,
				Named:   append([]int(nil), names...),
				Omitted: f.Omitted,
			}
			return visit(spelled)
		}
		for i := 0; i < k-1; i++ {
			if !generate(k - 1) {
				return false
			}
			if k%2 == 0 {
				names[i], names[k-1] = names[k-1], names[i]
			} else {
				names[0], names[k-1] = names[k-1], names[0]
			}
		}
		return generate(k - 1)
	}

	return generate(len(names))
}
