// Copyright © 2026 Skylight contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: sky/errors.go
// Summary: Error taxonomy for store operations.
// Notes: NotFound is benign and absorbed at the boundary; InvariantError
//        means a store bug or caller misuse and must never pass silently.

package sky

import (
	"errors"
	"fmt"
)

// Record kinds referenced by NotFoundError.
const (
	KindWindow = "window"
	KindGroup  = "group"
)

// NotFoundError reports an operation that referenced a window or group id
// that is not in the store. Callers treat it as a logical no-op.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// InvariantError reports a precondition or internal consistency failure.
// The mutating operation aborts without touching prior state.
type InvariantError struct {
	Op     string
	Detail string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant violated in %s: %s", e.Op, e.Detail)
}

// IsInvariant reports whether err is (or wraps) an InvariantError.
func IsInvariant(err error) bool {
	var iv *InvariantError
	return errors.As(err, &iv)
}
