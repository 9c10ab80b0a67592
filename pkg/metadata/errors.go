/*
 * Copyright (c) 2024-present Metadef, Ltd.
 */

package metadata

import (
	"errors"
	"fmt"
	"strings"

	"github.com/metadef/metadef/pkg/metadata/constraints"
)

func EnrichError(err error, msg string, args ...any) error {
	s := msg
	if len(args) > 0 {
		s = fmt.Sprintf(msg, args...)
	}
	return fmt.Errorf("%w: %s", err, s)
}

var ErrMissedError = errors.New("missed")

func ErrMissed(msg string, args ...any) error {
	return EnrichError(ErrMissedError, msg, args...)
}

var ErrInvalidError = errors.New("not valid")

func ErrInvalid(msg string, args ...any) error {
	return EnrichError(ErrInvalidError, msg, args...)
}

var ErrAlreadyExistsError = errors.New("already exists")

func ErrAlreadyExists(msg string, args ...any) error {
	return EnrichError(ErrAlreadyExistsError, msg, args...)
}

func ErrTypeAlreadyExists(id TypeID) error {
	return ErrAlreadyExists("type «%v»", id)
}

func ErrChildAlreadyExists(path string, typ, name string) error {
	return ErrAlreadyExists("%s: child %s «%s»", path, typ, name)
}

var ErrNotFoundError = errors.New("not found")

func ErrNotFound(msg string, args ...any) error {
	return EnrichError(ErrNotFoundError, msg, args...)
}

func ErrTypeNotFound(id TypeID) error {
	return ErrNotFound("type «%v»", id)
}

func ErrChildNotFound(path, name string) error {
	return ErrNotFound("%s: child «%s»", path, name)
}

func ErrAttrNotFound(path, name string) error {
	return ErrNotFound("%s: attribute «%s»", path, name)
}

var ErrUnknownAncestorError = errors.New("unknown ancestor")

func ErrUnknownAncestor(id, ancestor TypeID) error {
	return EnrichError(ErrUnknownAncestorError, "type «%v» inherits from unregistered «%v»", id, ancestor)
}

var ErrCircularError = errors.New("circular reference")

// ErrCircular reports a detected cycle; path names the participants in
// walk order, the first one repeated at the end.
func ErrCircular(path ...string) error {
	return EnrichError(ErrCircularError, "%s", strings.Join(path, PathArrow))
}

var ErrSealedError = errors.New("sealed")

func ErrSealed(msg string, args ...any) error {
	return EnrichError(ErrSealedError, msg, args...)
}

var ErrPlacementDeniedError = errors.New("placement denied")

// ErrValueViolationError is raised (wrapped into a ValueError) when an
// attribute value fails its declared constraint.
var ErrValueViolationError = constraints.ErrViolationError

// PlacementError is raised when a child node shape is not permitted
// under a parent. It carries the parent path, the attempted child shape
// and the rendered list of legal shapes;
// errors.Is(err, ErrPlacementDeniedError) is true.
type PlacementError struct {
	Parent    string
	ChildType TypeID
	ChildName string
	Allowed   []string
}

func (e *PlacementError) Error() string {
	b := strings.Builder{}
	fmt.Fprintf(&b, "%v: %s(%s) under %s", ErrPlacementDeniedError, e.ChildType, e.ChildName, e.Parent)
	if len(e.Allowed) == 0 {
		b.WriteString("; no children are permitted")
	} else {
		fmt.Fprintf(&b, "; legal children: %s", strings.Join(e.Allowed, "; "))
	}
	return b.String()
}

func (e *PlacementError) Unwrap() error { return ErrPlacementDeniedError }

// ValueError is raised when an attribute value fails its declared
// constraint. It carries the hierarchical path of the node and wraps
// the underlying *constraints.Violation, so both
// errors.Is(err, ErrValueViolationError) and errors.As to
// *constraints.Violation hold.
type ValueError struct {
	Path  string
	Attr  string
	Value any
	cause error
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.cause)
}

func (e *ValueError) Unwrap() error { return e.cause }
