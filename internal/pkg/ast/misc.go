package ast

import "golang.org/x/text/unicode/norm"

// Identifier is an atomic name. Identifiers are stored NFC-normalized so
// visually identical spellings compare equal.
type Identifier string

func NewIdentifier(s string) Identifier {
	return Identifier(norm.NFC.String(s))
}

func (i Identifier) EqualsTo(other Identifier) bool {
	return string(i) == string(other)
}

// PackageIdentifier names a loaded package (its manifest name or url).
type PackageIdentifier string
