// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.dietpy.dev/desugar"
)

func TestConfigConstants(t *testing.T) {
	assert.Equal(t, "dietpy", configBaseName)
	assert.Equal(t, "dietpy.yaml", configFileName)
	assert.Equal(t, ".", configFolderPath)
	assert.Equal(t, "DIETPY", envPrefix)
	assert.Equal(t, "desugar.import_star", importStarKey)
	assert.Equal(t, "allowed", defaultImportStar)
	assert.Equal(t, true, defaultInjectImport)
	assert.Equal(t, 1, currentConfigVersion)
}

func TestParseSlogLevel(t *testing.T) {
	tests := []struct {
		value string
		want  slog.Level
	}{
		{"", slog.LevelInfo},
		{"debug", slog.LevelDebug},
		{" INFO ", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"-4", slog.LevelDebug},
		{"bogus", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, parseSlogLevel(tt.value, slog.LevelInfo))
		})
	}
}

func TestOptionsFromConfig(t *testing.T) {
	cmd := newRootCmd()
	flags := cmd.PersistentFlags()
	t.Cleanup(func() {
		_ = flags.Set(importStarFlagName, defaultImportStar)
		_ = flags.Set(lowerAttributesFlagName, "false")
		_ = flags.Set(injectImportFlagName, "true")
	})

	opts, err := optionsFromConfig()
	require.NoError(t, err)
	assert.Equal(t, desugar.ImportStarAllowed, opts.ImportStar)
	assert.True(t, opts.InjectImport)
	assert.False(t, opts.LowerAttributes)
	assert.NotNil(t, opts.Logger)

	require.NoError(t, flags.Set(importStarFlagName, "strip"))
	require.NoError(t, flags.Set(lowerAttributesFlagName, "true"))
	require.NoError(t, flags.Set(injectImportFlagName, "false"))
	opts, err = optionsFromConfig()
	require.NoError(t, err)
	assert.Equal(t, desugar.ImportStarStrip, opts.ImportStar)
	assert.True(t, opts.LowerAttributes)
	assert.False(t, opts.InjectImport)

	require.NoError(t, flags.Set(importStarFlagName, "bogus"))
	_, err = optionsFromConfig()
	require.Error(t, err)
}

func TestConfigCmd_PrintsYAML(t *testing.T) {
	output, err := execute(t, "", "config")
	require.NoError(t, err)
	assert.Contains(t, output, "desugar:")
	assert.Contains(t, output, "import_star: allowed")
	assert.Contains(t, output, "log:")
}

func TestLoadConfig_WarnsOnMalformedFile(t *testing.T) {
	t.Cleanup(func() { viper.SetConfigFile(filepath.Join(configFolderPath, configFileName)) })

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	missing := filepath.Join(t.TempDir(), configFileName)
	viper.SetConfigFile(missing)
	loadConfig(logger)
	assert.Empty(t, buf.String())

	malformed := filepath.Join(t.TempDir(), configFileName)
	require.NoError(t, os.WriteFile(malformed, []byte("desugar: [unclosed\n"), 0o644))
	viper.SetConfigFile(malformed)
	loadConfig(logger)
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "ignoring config file")
	assert.Contains(t, buf.String(), malformed)
}
