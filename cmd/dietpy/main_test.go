// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs a fresh root command with args, reading stdin, and
// returns its standard output. Logs go to a temporary file.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	logFile := filepath.Join(t.TempDir(), "dietpy.log")
	cmd.SetArgs(append(args, "--"+logFileFlagName+"="+logFile))
	err := cmd.Execute()
	return out.String(), err
}

// writeFile creates a file in a temporary directory and returns its
// name.
func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNewRootCmd(t *testing.T) {
	cmd := newRootCmd()
	assert.Equal(t, "dietpy", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.Equal(t, rootLongDescription, cmd.Long)

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	for _, want := range []string{"transform", "repl", "init", "config", "version"} {
		assert.Contains(t, names, want)
	}
}

func TestRootCmd_HelpOutput(t *testing.T) {
	output, err := execute(t, "")
	require.NoError(t, err)
	assert.Contains(t, output, "Usage:")
	assert.Contains(t, output, "runtime module __dp__")
}

func TestRootCmd_PersistentFlags(t *testing.T) {
	cmd := newRootCmd()
	for _, name := range []string{
		importStarFlagName,
		injectImportFlagName,
		lowerAttributesFlagName,
		truthyFlagName,
		forceImportRewriteFlagName,
		cleanupGlobalsFlagName,
		explicitScopesFlagName,
		checkIdempotentFlagName,
		logFileFlagName,
		verboseFlagName,
	} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), name)
	}
}
