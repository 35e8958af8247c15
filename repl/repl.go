// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package repl provides a read/desugar/print loop for Python.
//
// It supports readline-style command editing,
// and interrupts through Control-C.
//
// The REPL reads one statement at a time. A compound statement is
// read until a blank line. Each statement is desugared on its own and
// its lowered form is printed.
package repl // import "go.dietpy.dev/repl"

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/chzyer/readline"

	"go.dietpy.dev/desugar"
	"go.dietpy.dev/syntax"
)

// REPL executes a read, desugar, print loop on the terminal.
//
// The runtime import and the global cleanup call are not emitted for
// individual statements, whatever opts says.
func REPL(opts *desugar.Options) {
	rl, err := readline.New(">>> ")
	if err != nil {
		PrintError(err)
		return
	}
	defer rl.Close()

	opts = statementOptions(opts)
	for {
		if err := rep(rl, opts); err != nil {
			if err == readline.ErrInterrupt {
				fmt.Println(err)
				continue
			}
			break
		}
	}
	fmt.Println()
}

// statementOptions returns a copy of opts suitable for desugaring a
// single statement.
func statementOptions(opts *desugar.Options) *desugar.Options {
	if opts == nil {
		opts = desugar.DefaultOptions()
	}
	o := *opts
	o.InjectImport = false
	o.CleanupGlobals = false
	return &o
}

// rep reads, desugars, and prints one item.
//
// It returns an error (possibly readline.ErrInterrupt)
// only if readline failed. Desugaring errors are printed.
func rep(rl *readline.Instance, opts *desugar.Options) error {
	// readline returns EOF, ErrInterrupted, or a line including "\n".
	rl.SetPrompt(">>> ")
	readline := func() ([]byte, error) {
		line, err := rl.Readline()
		rl.SetPrompt("... ")
		if err != nil {
			return nil, err
		}
		return []byte(line + "\n"), nil
	}
	err := Desugar(rl.Stdout(), readline, opts)
	var r readError
	if errors.As(err, &r) {
		return r.err
	}
	if err != nil {
		PrintError(err)
	}
	return nil
}

// A readError reports a failure of the input source rather than of
// the statement it delivered.
type readError struct{ err error }

func (e readError) Error() string { return e.err.Error() }
func (e readError) Unwrap() error { return e.err }

// Desugar reads one statement using readline, desugars it with opts
// and writes its lowered form to out. A blank line produces no output.
//
// If readline fails before a statement is complete, the error wraps
// the readline error (io.EOF at end of input) so that the caller can
// stop. Otherwise the error, if any, comes from parsing or desugaring
// the statement.
func Desugar(out io.Writer, readline func() ([]byte, error), opts *desugar.Options) error {
	var src []byte
	var readErr error
	read := func() ([]byte, error) {
		line, err := readline()
		if err != nil {
			readErr = err
			return nil, err
		}
		src = append(src, line...)
		return line, nil
	}

	f, err := syntax.ParseCompoundStmt("<stdin>", read)
	if readErr != nil && (err != nil || len(src) == 0) {
		return readError{readErr}
	}
	if err != nil {
		return &desugar.SyntaxError{Err: err}
	}
	if len(f.Stmts) == 0 {
		return nil
	}

	res, err := desugar.File(f, src, opts)
	if err != nil {
		return err
	}
	_, err = io.WriteString(out, syntax.Format(res.File))
	return err
}

// PrintError prints the error to stderr,
// or its stack if it is an internal error of the desugarer.
func PrintError(err error) {
	var internal *desugar.InternalError
	if errors.As(err, &internal) && internal.Stack != nil {
		fmt.Fprintf(os.Stderr, "%v\n%s", err, internal.Stack)
	} else {
		fmt.Fprintln(os.Stderr, err)
	}
}
