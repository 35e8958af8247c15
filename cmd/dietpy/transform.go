// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"go.dietpy.dev/desugar"
	"go.dietpy.dev/syntax"
)

const transformLongDescription = `Desugar the named Python files, the program given by -c, or the
standard input if neither is given.

Each output goes to the standard output, or to a file of the same
base name in the directory named by --output-dir. Files are
transformed in parallel.`

// A unit is one module to transform.
type unit struct {
	name string
	src  []byte
	file bool // name is a file, not <stdin> or <cmdline>
}

// An output is the result of transforming a unit.
type output struct {
	unit
	res  *desugar.Result
	text string
}

type transformFlags struct {
	prog      string
	outputDir string
	diff      bool
	names     string
}

func newTransformCmd() *cobra.Command {
	var flags transformFlags
	cmd := &cobra.Command{
		Use:   "transform [file ...]",
		Short: "Desugar Python files",
		Long:  transformLongDescription,
		RunE: func(cmd *cobra.Command, args []string) error {
			units, err := readUnits(cmd.InOrStdin(), args, flags.prog)
			if err != nil {
				return err
			}
			opts, err := optionsFromConfig()
			if err != nil {
				return err
			}
			outputs, err := transformAll(cmd.Context(), units, opts, viper.GetInt(jobsKey))
			if err != nil {
				return err
			}
			if err := writeOutputs(cmd.OutOrStdout(), outputs, flags); err != nil {
				return err
			}
			if flags.names != "" {
				return writeNames(cmd.OutOrStdout(), flags.names, outputs)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&flags.prog, "command", "c", "", "transform program `prog`")
	cmd.Flags().StringVarP(&flags.outputDir, "output-dir", "o", "", "write outputs to this directory")
	cmd.Flags().BoolVar(&flags.diff, "diff", false, "print a unified diff of each input against its output")
	cmd.Flags().StringVar(&flags.names, "names", "", "write the generated function names as JSON to `file` (- for standard output)")
	cmd.Flags().IntP(jobsFlagName, "j", defaultJobs, "number of files transformed at once (0 means one per CPU)")
	bindFlagToConfig(cmd.Flags().Lookup(jobsFlagName), jobsKey)
	return cmd
}

// readUnits returns the modules named by the command line.
func readUnits(stdin io.Reader, args []string, prog string) ([]unit, error) {
	switch {
	case prog != "" && len(args) > 0:
		return nil, fmt.Errorf("-c and file arguments are mutually exclusive")
	case prog != "":
		return []unit{{name: "<cmdline>", src: []byte(prog)}}, nil
	case len(args) == 0:
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("reading standard input: %w", err)
		}
		return []unit{{name: "<stdin>", src: data}}, nil
	}
	units := make([]unit, 0, len(args))
	for _, arg := range args {
		data, err := os.ReadFile(arg)
		if err != nil {
			return nil, err
		}
		units = append(units, unit{name: arg, src: data, file: true})
	}
	return units, nil
}

// transformAll desugars units concurrently, at most jobs at a time,
// and returns their outputs in order. It stops at the first failure.
func transformAll(ctx context.Context, units []unit, opts *desugar.Options, jobs int) ([]output, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	outputs := make([]output, len(units))
	group, groupCtx := errgroup.WithContext(ctx)
	if jobs > 0 {
		group.SetLimit(jobs)
	}
	for i, u := range units {
		i, u := i, u
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			o := *opts
			res, err := desugar.Source(u.name, u.src, &o)
			if err != nil {
				slog.Error("transform failed", "file", u.name, "error", err)
				return fmt.Errorf("%s: %w", u.name, err)
			}
			text := string(u.src)
			if !res.Disabled {
				text = syntax.Format(res.File)
			}
			slog.Info("transformed", "file", u.name, "functions", len(res.Names), "disabled", res.Disabled)
			outputs[i] = output{unit: u, res: res, text: text}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return outputs, nil
}

func writeOutputs(stdout io.Writer, outputs []output, flags transformFlags) error {
	if flags.outputDir != "" {
		if err := os.MkdirAll(flags.outputDir, 0o755); err != nil {
			return err
		}
	}
	for _, out := range outputs {
		text := out.text
		if flags.diff {
			diff, err := unifiedDiff(out)
			if err != nil {
				return err
			}
			text = diff
		}
		if flags.outputDir != "" && out.file {
			path := filepath.Join(flags.outputDir, filepath.Base(out.name))
			if flags.diff {
				path += ".diff"
			}
			if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
				return err
			}
			continue
		}
		if len(outputs) > 1 {
			fmt.Fprintf(stdout, "# %s\n", out.name)
		}
		if _, err := io.WriteString(stdout, text); err != nil {
			return err
		}
	}
	return nil
}

// unifiedDiff returns the differences between the input and output
// of a transformation. It is empty for an unchanged module.
func unifiedDiff(out output) (string, error) {
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(out.src)),
		B:        difflib.SplitLines(out.text),
		FromFile: out.name,
		ToFile:   out.name + " (desugared)",
		Context:  3,
	})
}
