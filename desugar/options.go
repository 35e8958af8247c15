// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package desugar

import (
	"fmt"
	"io"
	"log/slog"
)

// ImportStar selects the treatment of "from m import *".
type ImportStar uint8

const (
	ImportStarAllowed ImportStar = iota // left unchanged
	ImportStarError                     // rejected with an UnsupportedError
	ImportStarStrip                     // removed
)

var importStarNames = [...]string{
	ImportStarAllowed: "allowed",
	ImportStarError:   "error",
	ImportStarStrip:   "strip",
}

func (m ImportStar) String() string { return importStarNames[m] }

// ParseImportStar returns the ImportStar mode named s.
func ParseImportStar(s string) (ImportStar, error) {
	for i, name := range importStarNames {
		if name == s {
			return ImportStar(i), nil
		}
	}
	return 0, fmt.Errorf("invalid import-star mode %q (want allowed, error or strip)", s)
}

// Options controls a transformation.
type Options struct {
	ImportStar ImportStar

	// InjectImport inserts __dp__ = __import__("__dp__") at the top
	// of the module.
	InjectImport bool

	// LowerAttributes turns attribute loads, stores and deletions into
	// __dp__.getattr, setattr and delattr calls.
	LowerAttributes bool

	// Truthy wraps the tests of if and while statements in
	// __dp__.truth.
	Truthy bool

	// ForceImportRewrite rewrites __future__ imports too.
	ForceImportRewrite bool

	// CleanupGlobals appends __dp__.cleanup_dp_globals(globals())
	// to the module.
	CleanupGlobals bool

	// ExplicitScopes resolves names by renaming them to name@depth
	// instead of introducing cells. The output is meant for
	// backends with slot-addressed frames; it is not Python.
	ExplicitScopes bool

	// CheckIdempotent transforms the output a second time and reports
	// an InternalError if that changes it.
	CheckIdempotent bool

	// Logger receives debug records for each phase. If nil,
	// nothing is logged.
	Logger *slog.Logger
}

// DefaultOptions returns the options used by the dietpy command.
func DefaultOptions() *Options {
	return &Options{
		ImportStar:   ImportStarAllowed,
		InjectImport: true,
	}
}

func (opts *Options) logger() *slog.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
