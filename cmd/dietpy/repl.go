// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"go.dietpy.dev/repl"
)

// isTerminal reports whether fd is a terminal.
var isTerminal = term.IsTerminal

func stdinIsTerminal(cmd *cobra.Command) bool {
	f, ok := cmd.InOrStdin().(*os.File)
	return ok && isTerminal(int(f.Fd()))
}

func newREPLCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Desugar statements interactively",
		Long: `Read Python statements and print the desugared form of each.
A compound statement ends at a blank line.

If the standard input is not a terminal, it is desugared as a
single module instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !stdinIsTerminal(cmd) {
				return desugarStdin(cmd)
			}
			return runREPL(cmd)
		},
	}
}

func runREPL(cmd *cobra.Command) error {
	opts, err := optionsFromConfig()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Welcome to dietpy (go.dietpy.dev)")
	repl.REPL(opts)
	return nil
}

func desugarStdin(cmd *cobra.Command) error {
	units, err := readUnits(cmd.InOrStdin(), nil, "")
	if err != nil {
		return err
	}
	opts, err := optionsFromConfig()
	if err != nil {
		return err
	}
	outputs, err := transformAll(cmd.Context(), units, opts, 1)
	if err != nil {
		return err
	}
	_, err = io.WriteString(cmd.OutOrStdout(), outputs[0].text)
	return err
}
