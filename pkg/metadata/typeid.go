/*
 * Copyright (c) 2024-present Metadef, Ltd.
 */

package metadata

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/metadef/metadef/pkg/metadata/constraints"
)

// TypeID is the two level classification of a metadata entity: the
// category (e.g. "field") and the concrete kind (e.g. "string").
type TypeID struct {
	typ string
	sub string
}

// Null (empty) TypeID
var NullTypeID = TypeID{}

// NewTypeID builds a type identifier from category and concrete kind.
func NewTypeID(typ, subType string) TypeID {
	return TypeID{typ: typ, sub: subType}
}

// ParseTypeID parses a type identifier from its "type.subType" string
// form.
func ParseTypeID(val string) (TypeID, error) {
	s := strings.Split(val, TypeIDSeparator)
	if len(s) != 2 {
		return NullTypeID, ErrInvalid("convert «%s» to type identifier", val)
	}
	return NewTypeID(s[0], s[1]), nil
}

// MustParseTypeID parses a type identifier from string.
//
// # Panics:
//   - if string is not a valid type identifier
func MustParseTypeID(val string) TypeID {
	id, err := ParseTypeID(val)
	if err != nil {
		panic(err)
	}
	return id
}

// Type returns the category part.
func (id TypeID) Type() string { return id.typ }

// SubType returns the concrete kind part.
func (id TypeID) SubType() string { return id.sub }

// IsNull reports whether the identifier is empty.
func (id TypeID) IsNull() bool { return id == NullTypeID }

// Match reports whether the identifier satisfies the pattern, where
// either pattern part may be the "*" wildcard.
func (id TypeID) Match(pattern TypeID) bool {
	return constraints.MatchToken(pattern.typ, id.typ) &&
		constraints.MatchToken(pattern.sub, id.sub)
}

func (id TypeID) String() string {
	return id.typ + TypeIDSeparator + id.sub
}

// CompareTypeID compares two type identifiers, category first.
func CompareTypeID(a, b TypeID) int {
	if a.typ != b.typ {
		return strings.Compare(a.typ, b.typ)
	}
	return strings.Compare(a.sub, b.sub)
}

// ValidTypeID returns whether both identifier parts are valid
// identifiers and error if not.
func ValidTypeID(id TypeID) (bool, error) {
	if id.IsNull() {
		return false, ErrMissed("type identifier")
	}
	if ok, err := ValidIdent(id.Type()); !ok {
		return false, err
	}
	if ok, err := ValidIdent(id.SubType()); !ok {
		return false, err
	}
	return true, nil
}

// JSON marshaling support
func (id TypeID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.String())
}

// need to marshal map[TypeID]any
func (id TypeID) MarshalText() ([]byte, error) {
	js, err := json.Marshal(id.String())
	if err != nil {
		return nil, err
	}
	res, err := strconv.Unquote(string(js))
	if err != nil {
		return nil, err
	}
	return []byte(res), nil
}

// JSON unmarshaling support
func (id *TypeID) UnmarshalJSON(text []byte) error {
	str, err := strconv.Unquote(string(text))
	if err != nil {
		return err
	}
	*id, err = ParseTypeID(str)
	return err
}

// need to unmarshal map[TypeID]any: golang json checks for
// UnmarshalText presence when unmarshaling a map key, UnmarshalJSON is
// used for the actual work anyway
func (id *TypeID) UnmarshalText([]byte) error { return nil }
