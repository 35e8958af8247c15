// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package desugar rewrites a Python module into an explicit form in
// which operators, attribute and item access, iteration, exception
// matching, closures and class construction are calls into the
// runtime support module __dp__.
//
// The transformation proceeds in phases:
//
//   - annotations are turned into assignments to __annotations__, and
//     private names in class bodies are mangled;
//   - stage 1 applies the rule catalog to a fixpoint (see driver.go);
//   - stage 2, given the complete scope tree, renames function
//     definitions and turns class bodies into namespace functions;
//   - names are resolved, either through cells and globals() or, if
//     Options.ExplicitScopes is set, by renaming them name@depth;
//   - optional final passes add truthiness tests, global cleanup and
//     the import of __dp__.
//
// A module whose first line contains the marker "diet-python: disabled"
// is returned unchanged.
package desugar // import "go.dietpy.dev/desugar"

import (
	"bytes"
	"fmt"

	"go.dietpy.dev/resolve"
	"go.dietpy.dev/syntax"
)

// DisableMarker disables the transformation of a module when it
// appears on the module's first line.
const DisableMarker = "diet-python: disabled"

// A Result is the outcome of a transformation.
type Result struct {
	File     *syntax.File
	Names    FunctionNames // generated function names; nil if Disabled
	Disabled bool          // the module was returned unchanged
}

// Source parses and transforms the module src. See syntax.Parse for
// the permitted types of src.
func Source(filename string, src interface{}, opts *Options) (*Result, error) {
	data, err := readSource(filename, src)
	if err != nil {
		return nil, err
	}
	f, err := syntax.Parse(filename, data)
	if err != nil {
		return nil, &SyntaxError{Err: err}
	}
	return File(f, data, opts)
}

func readSource(filename string, src interface{}) ([]byte, error) {
	switch src := src.(type) {
	case string:
		return []byte(src), nil
	case []byte:
		return src, nil
	case nil:
		return nil, fmt.Errorf("%s: no source", filename)
	default:
		return nil, fmt.Errorf("invalid source: %T", src)
	}
}

// File transforms the parsed module f in place. The source text src
// is consulted for the disable marker. If opts is nil, DefaultOptions
// are used.
//
// On failure the error is a *SyntaxError, *UnsupportedError or
// *InternalError, and f is left in an unspecified state.
func File(f *syntax.File, src []byte, opts *Options) (*Result, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	res, err := transform(f, src, opts)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Disabled reports whether the transformation of src is disabled,
// either by the marker on its first line or because it contains an
// escape of a lone surrogate, which the output could not represent.
func Disabled(src []byte) bool {
	first := src
	if i := bytes.IndexByte(src, '\n'); i >= 0 {
		first = src[:i]
	}
	return bytes.Contains(first, []byte(DisableMarker)) || syntax.HasSurrogateEscape(src)
}

func transform(f *syntax.File, src []byte, opts *Options) (res *Result, err error) {
	defer recoverError(&err)

	if Disabled(src) {
		opts.logger().Debug("disabled", "file", f.Path)
		return &Result{File: f, Disabled: true}, nil
	}
	if _, err := resolve.Module(f); err != nil {
		return nil, &SyntaxError{Err: err}
	}

	ctx := newContext(f, opts)
	ctx.log.Debug("phase", "phase", "annotations", "file", f.Path)
	ctx.annotations(f)
	ctx.manglePrivate(f)

	ctx.log.Debug("phase", "phase", "stage 1")
	ctx.lowerModule(f)

	ctx.log.Debug("phase", "phase", "stage 2")
	root := ctx.scopes(f)
	ctx.rewriteFunctionDefs(f, root)
	ctx.rewriteClasses(f, root)

	if opts.ExplicitScopes {
		ctx.log.Debug("phase", "phase", "explicit scopes")
		ctx.renameExplicit(f)
	} else {
		ctx.log.Debug("phase", "phase", "closures")
		ctx.resolveClosures(f, ctx.scopes(f))
	}

	stripPasses(f)
	if opts.Truthy {
		truthy{}.VisitBody(&f.Stmts)
	}
	if opts.CleanupGlobals {
		cleanupGlobals(f)
	}
	if opts.InjectImport {
		ensureImport(f)
	}
	if opts.CheckIdempotent && !opts.ExplicitScopes {
		ctx.log.Debug("phase", "phase", "idempotence check")
		checkIdempotent(f, opts)
	}
	ctx.log.Debug("done", "passes", ctx.passes, "fresh", ctx.counter)
	return &Result{File: f, Names: ctx.names}, nil
}

// scopes analyzes the scopes of a module produced by rewriting.
// Failure indicates a defective rule.
func (ctx *Context) scopes(f *syntax.File) *resolve.Scope {
	root, err := resolve.Module(f)
	if err != nil {
		panic(&InternalError{Err: fmt.Errorf("rewritten module: %w", err)})
	}
	return root
}
