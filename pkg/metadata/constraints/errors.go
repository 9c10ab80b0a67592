/*
 * Copyright (c) 2024-present Metadef, Ltd.
 */

package constraints

import (
	"errors"
	"fmt"
)

func enrich(err error, msg string, args ...any) error {
	s := msg
	if len(args) > 0 {
		s = fmt.Sprintf(msg, args...)
	}
	return fmt.Errorf("%w: %s", err, s)
}

var ErrViolationError = errors.New("value constraint violated")

func ErrViolation(msg string, args ...any) error {
	return enrich(ErrViolationError, msg, args...)
}

var ErrIncompatibleError = errors.New("incompatible constraint")

func ErrIncompatible(msg string, args ...any) error {
	return enrich(ErrIncompatibleError, msg, args...)
}
