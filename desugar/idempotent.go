// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package desugar

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"go.dietpy.dev/syntax"
)

// treeOptions compare syntax trees by structure, ignoring positions
// and raw token text.
var treeOptions = cmp.Options{
	cmpopts.IgnoreTypes(syntax.Position{}),
	cmpopts.IgnoreUnexported(syntax.File{}),
	cmpopts.IgnoreFields(syntax.Literal{}, "Raw"),
	cmpopts.IgnoreFields(syntax.FStringExpr{}, "Raw"),
	cmp.Comparer(func(x, y *big.Int) bool { return x.Cmp(y) == 0 }),
}

// Diff returns a human-readable report of the structural differences
// between two trees, or "" if they are equal. Positions, raw token
// text and the numbering of generated names are not compared; Diff
// renumbers the generated names of both trees in place.
func Diff(x, y *syntax.File) string {
	normalizeFresh(x)
	normalizeFresh(y)
	return cmp.Diff(x, y, treeOptions)
}

// checkIdempotent transforms the printed form of out again and
// reports an InternalError if the result differs from out. The
// comparison is textual, since printing does not preserve every
// distinction of the tree: a folded negative literal reparses as a
// unary minus.
func checkIdempotent(out *syntax.File, opts *Options) {
	text := syntax.Format(out)
	reparse := func() *syntax.File {
		f, err := syntax.Parse(out.Path, text)
		if err != nil {
			panic(&InternalError{Err: fmt.Errorf("output does not parse: %w", err)})
		}
		return f
	}
	want := reparse()
	again := *opts
	again.CheckIdempotent = false
	res, err := transform(reparse(), []byte(text), &again)
	if err != nil {
		panic(&InternalError{Err: fmt.Errorf("transforming output: %w", err)})
	}
	normalizeFresh(want)
	normalizeFresh(res.File)
	if diff := cmp.Diff(syntax.Format(want), syntax.Format(res.File)); diff != "" {
		panic(&InternalError{Err: fmt.Errorf("transformation is not idempotent (-once +twice):\n%s", diff)})
	}
}

// normalizeFresh renumbers the generated names of f in order of first
// appearance, so that trees produced with different counters compare
// equal.
func normalizeFresh(f *syntax.File) {
	renamed := make(map[string]string)
	n := 0
	syntax.Walk(f, func(node syntax.Node) bool {
		id, ok := node.(*syntax.Ident)
		if !ok {
			return true
		}
		base, ok := freshBase(id.Name)
		if !ok {
			return true
		}
		name, ok := renamed[id.Name]
		if !ok {
			n++
			name = base + "_" + strconv.Itoa(n)
			renamed[id.Name] = name
		}
		id.Name = name
		return true
	})
}

// freshBase returns the name without the numeric suffix added by
// Fresh, if name has that form.
func freshBase(name string) (string, bool) {
	if !strings.HasPrefix(name, "_dp_") {
		return "", false
	}
	i := strings.LastIndexByte(name, '_')
	if i < len("_dp_") {
		return "", false
	}
	if _, err := strconv.ParseUint(name[i+1:], 10, 64); err != nil {
		return "", false
	}
	return name[:i], true
}
