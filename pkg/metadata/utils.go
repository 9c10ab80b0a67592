/*
 * Copyright (c) 2024-present Metadef, Ltd.
 */

package metadata

import "strings"

// ValidIdent returns whether the string is a valid identifier and error
// if not. Identifiers start with a letter and continue with letters,
// digits or underscores.
func ValidIdent(ident string) (bool, error) {
	if len(ident) < 1 {
		return false, ErrMissed("ident")
	}

	if l := len(ident); l > MaxIdentLen {
		return false, ErrInvalid("ident «%s» too long (%d runes, max is %d)", ident, l, MaxIdentLen)
	}

	digit := func(r rune) bool { return ('0' <= r) && (r <= '9') }

	letter := func(r rune) bool { return (('a' <= r) && (r <= 'z')) || (('A' <= r) && (r <= 'Z')) }

	underScore := func(r rune) bool { return r == '_' }

	for p, c := range ident {
		if !letter(c) && !underScore(c) {
			if (p == 0) || !digit(c) {
				return false, ErrInvalid("ident «%s» has invalid char «%c» at pos %d", ident, c, p)
			}
		}
	}

	return true, nil
}

// ValidPackage returns whether the string is a valid package namespace
// (identifier segments joined by PkgSeparator) and error if not. The
// empty package is valid.
func ValidPackage(pkg string) (bool, error) {
	if pkg == "" {
		return true, nil
	}
	for _, seg := range strings.Split(pkg, PkgSeparator) {
		if ok, err := ValidIdent(seg); !ok {
			return false, ErrInvalid("package «%s»: %v", pkg, err)
		}
	}
	return true, nil
}
