// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package desugar

import (
	"fmt"
	"log/slog"

	"go.dietpy.dev/syntax"
)

// A Context holds the state of one transformation. It must not be
// shared between goroutines; parallel transformations each use their
// own.
type Context struct {
	opts *Options
	log  *slog.Logger

	counter  int             // fresh-name counter
	reserved map[string]bool // identifiers of the input and names handed out

	frames []frame // enclosing bodies during stage 1

	// helperMode records, for each comprehension helper, whether
	// assignment expressions in it bind a global (GLOBAL) or a
	// name of an enclosing function (NONLOCAL).
	helperMode map[string]syntax.Token

	names  FunctionNames
	passes int // stage 1 passes over the module
}

type frameKind uint8

const (
	moduleFrame frameKind = iota
	functionFrame
	classFrame
)

// A frame describes a body being lowered by stage 1.
type frame struct {
	kind frameKind
	def  *syntax.DefStmt // functionFrame only
}

func newContext(f *syntax.File, opts *Options) *Context {
	ctx := &Context{
		opts:       opts,
		log:        opts.logger(),
		reserved:   make(map[string]bool),
		helperMode: make(map[string]syntax.Token),
		names:      make(FunctionNames),
	}
	syntax.Walk(f, func(n syntax.Node) bool {
		switch n := n.(type) {
		case *syntax.Ident:
			ctx.reserved[n.Name] = true
		case *syntax.ImportName:
			ctx.reserved[n.Binds()] = true
		}
		return true
	})
	return ctx
}

// Fresh returns a new identifier _dp_<prefix>_<n>. The counter starts
// at 1 for each transformation, so output is deterministic; names
// that occur in the input are skipped.
func (ctx *Context) Fresh(prefix string) string {
	for {
		ctx.counter++
		name := fmt.Sprintf("_dp_%s_%d", prefix, ctx.counter)
		if !ctx.reserved[name] {
			ctx.reserved[name] = true
			return name
		}
	}
}

func (ctx *Context) push(fr frame) { ctx.frames = append(ctx.frames, fr) }
func (ctx *Context) pop()          { ctx.frames = ctx.frames[:len(ctx.frames)-1] }

func (ctx *Context) top() frame {
	if len(ctx.frames) == 0 {
		return frame{kind: moduleFrame}
	}
	return ctx.frames[len(ctx.frames)-1]
}
