// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package desugar

import (
	"fmt"
	"runtime/debug"

	"go.dietpy.dev/syntax"
)

// A SyntaxError reports a module that could not be parsed or whose
// scopes are malformed. Err is a syntax.Error or a resolve.ErrorList.
type SyntaxError struct {
	Err error
}

func (e *SyntaxError) Error() string { return "syntax error: " + e.Err.Error() }
func (e *SyntaxError) Unwrap() error { return e.Err }

// An UnsupportedError reports a construct that the desugarer refuses
// to lower.
type UnsupportedError struct {
	Pos       syntax.Position
	Construct string
}

func (e *UnsupportedError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: unsupported: %s", e.Pos, e.Construct)
	}
	return "unsupported: " + e.Construct
}

// An InternalError reports a failure of the desugarer itself.
type InternalError struct {
	Err   error
	Stack []byte
}

func (e *InternalError) Error() string { return "internal error: " + e.Err.Error() }
func (e *InternalError) Unwrap() error { return e.Err }

// unsupported aborts the transformation.
func unsupported(n syntax.Node, format string, args ...interface{}) {
	var pos syntax.Position
	if n != nil {
		pos = syntax.Start(n)
	}
	panic(&UnsupportedError{Pos: pos, Construct: fmt.Sprintf(format, args...)})
}

// recoverError converts a panic into an error. UnsupportedErrors are
// returned as is; anything else becomes an InternalError.
func recoverError(err *error) {
	switch x := recover().(type) {
	case nil:
		// no panic
	case *UnsupportedError:
		*err = x
	case *InternalError:
		*err = x
	case error:
		*err = &InternalError{Err: x, Stack: debug.Stack()}
	default:
		*err = &InternalError{Err: fmt.Errorf("%v", x), Stack: debug.Stack()}
	}
}
