// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package desugar

import (
	"errors"
	"strings"
	"testing"

	"go.dietpy.dev/resolve"
	"go.dietpy.dev/syntax"
)

// catch runs f and returns the error it aborts with, if any.
func catch(f func()) (err error) {
	defer recoverError(&err)
	f()
	return nil
}

func parse(t *testing.T, src string) *syntax.File {
	t.Helper()
	f, err := syntax.Parse("test.py", src)
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func TestScopesWrapsErrorList(t *testing.T) {
	f := parse(t, "nonlocal x\n")
	ctx := newContext(f, &Options{})
	err := catch(func() { ctx.scopes(f) })

	var internal *InternalError
	if !errors.As(err, &internal) {
		t.Fatalf("got %v, want InternalError", err)
	}
	var list resolve.ErrorList
	if !errors.As(err, &list) {
		t.Fatalf("%v does not wrap a resolve.ErrorList", err)
	}
	if got := list[0].Msg; !strings.Contains(got, "module level") {
		t.Errorf("unexpected scope error %q", got)
	}
}

func TestPassLimit(t *testing.T) {
	// One pass short of the limit, a module at its fixpoint is fine.
	f := parse(t, "x = 1\n")
	ctx := newContext(f, &Options{})
	ctx.passes = maxPasses - 1
	if err := catch(func() { ctx.lowerModule(f) }); err != nil {
		t.Errorf("fixpoint at the last pass: %v", err)
	}

	// A module that still changes needs a confirming pass beyond it.
	f = parse(t, "x = a or b\n")
	ctx = newContext(f, &Options{})
	ctx.passes = maxPasses - 1
	err := catch(func() { ctx.lowerModule(f) })
	var internal *InternalError
	if !errors.As(err, &internal) || !strings.Contains(err.Error(), "did not converge") {
		t.Errorf("got %v, want convergence failure", err)
	}
}
