package qualify

import (
	"strings"
	"unicode"
)

// goReservedWords are identifiers that cannot (or should not) be used as
// import aliases in emitted code.
var goReservedWords = map[string]bool{
	"break": true, "default": true, "func": true, "interface": true, "select": true,
	"case": true, "defer": true, "go": true, "map": true, "struct": true,
	"chan": true, "else": true, "goto": true, "package": true, "switch": true,
	"const": true, "fallthrough": true, "if": true, "range": true, "type": true,
	"continue": true, "for": true, "import": true, "return": true, "var": true,
}

// ImportAlias derives a valid Go identifier from an import path. Versioned
// tails like /v9 fall back to the parent segment, punctuation is stripped,
// and reserved words get a pkg prefix.
func ImportAlias(pkgPath string) string {
	parts := strings.Split(pkgPath, "/")
	last := parts[len(parts)-1]
	if isVersionSegment(last) && len(parts) > 1 {
		last = parts[len(parts)-2]
	}

	alias := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			return r
		}
		return -1
	}, last)

	if alias == "" {
		alias = "pkg"
	}
	if goReservedWords[alias] {
		alias = "pkg" + strings.ToUpper(alias[:1]) + alias[1:]
	}
	return alias
}

// isVersionSegment reports whether s looks like a module major-version
// suffix (v2, v9, ...).
func isVersionSegment(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}
	for _, c := range s[1:] {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
