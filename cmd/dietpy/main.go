// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The dietpy command desugars Python modules.
// With no arguments on a terminal, it starts a read-desugar-print loop.
package main // import "go.dietpy.dev/cmd/dietpy"

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"go.dietpy.dev/desugar"
)

const rootLongDescription = `dietpy rewrites Python modules into an explicit form in which
operators, attribute and item access, iteration, exception matching,
closures and class construction are calls into the runtime module __dp__.

Options are read from dietpy.yaml in the current directory, from
DIETPY_* environment variables and from flags, in increasing order
of precedence.`

// rootCmd represents the base command when called without any subcommands.
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "dietpy",
		Short:         "Python desugaring compiler",
		Long:          rootLongDescription,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger(viper.GetString(logFilenameKey), viper.GetBool(logVerboseKey))
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if stdinIsTerminal(cmd) {
				return runREPL(cmd)
			}
			return cmd.Help()
		},
	}
	configureRootFlags(cmd)
	cmd.AddCommand(
		newTransformCmd(),
		newREPLCmd(),
		newInitCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)
	return cmd
}

func configureRootFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()

	flags.String(importStarFlagName, defaultImportStar, "treatment of 'from m import *': allowed, error or strip")
	bindFlagToConfig(flags.Lookup(importStarFlagName), importStarKey)

	flags.Bool(injectImportFlagName, defaultInjectImport, "insert the import of __dp__ at the top of each module")
	bindFlagToConfig(flags.Lookup(injectImportFlagName), injectImportKey)

	flags.Bool(lowerAttributesFlagName, false, "lower attribute access to __dp__.getattr, setattr and delattr")
	bindFlagToConfig(flags.Lookup(lowerAttributesFlagName), lowerAttributesKey)

	flags.Bool(truthyFlagName, false, "wrap if and while tests in __dp__.truth")
	bindFlagToConfig(flags.Lookup(truthyFlagName), truthyKey)

	flags.Bool(forceImportRewriteFlagName, false, "rewrite __future__ imports too")
	bindFlagToConfig(flags.Lookup(forceImportRewriteFlagName), forceImportRewriteKey)

	flags.Bool(cleanupGlobalsFlagName, false, "delete generated globals at the end of each module")
	bindFlagToConfig(flags.Lookup(cleanupGlobalsFlagName), cleanupGlobalsKey)

	flags.Bool(explicitScopesFlagName, false, "resolve names by renaming them name@depth instead of using cells")
	bindFlagToConfig(flags.Lookup(explicitScopesFlagName), explicitScopesKey)

	flags.Bool(checkIdempotentFlagName, false, "transform each output again and fail if it changes")
	bindFlagToConfig(flags.Lookup(checkIdempotentFlagName), checkIdempotentKey)

	flags.String(logFileFlagName, defaultLogFilename, "log file")
	bindFlagToConfig(flags.Lookup(logFileFlagName), logFilenameKey)

	flags.BoolP(verboseFlagName, "v", defaultLogVerbose, "log at debug level, including each desugaring phase")
	bindFlagToConfig(flags.Lookup(verboseFlagName), logVerboseKey)
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// Execute runs the root command and exits with status 1 on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		printError(err)
		os.Exit(1)
	}
}

// printError reports err on the standard logger, with the stack of
// an internal error when logging verbosely.
func printError(err error) {
	var internal *desugar.InternalError
	if errors.As(err, &internal) && viper.GetBool(logVerboseKey) {
		log.Printf("%v\n%s", err, internal.Stack)
		return
	}
	log.Print(err)
}

func main() {
	log.SetPrefix("dietpy: ")
	log.SetFlags(0)
	Execute()
}
