package itemmaker

import "golang.org/x/text/unicode/norm"

// normalizeName NFC-normalizes identifier text read off the tree-cursor
// protocol, so that two visually identical names built from different
// Unicode decompositions compare equal. buildGroup applies it to each
// scope group's name; associated-function, field and parameter names
// are stored as given, without normalization (grounded on the teacher's
// internal/lexer/normalize.go, which normalizes source identifiers the
// same way before interning them).
func normalizeName(s string) string {
	return norm.NFC.String(s)
}
