// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"go.dietpy.dev/desugar"
)

const (
	configVersionKey     = "version"
	currentConfigVersion = 1

	configBaseName   = "dietpy"
	configFileName   = configBaseName + ".yaml"
	configFolderPath = "."

	envPrefix = "DIETPY"

	importStarFlagName         = "import-star"
	injectImportFlagName       = "inject-import"
	lowerAttributesFlagName    = "lower-attributes"
	truthyFlagName             = "truthy"
	forceImportRewriteFlagName = "force-import-rewrite"
	cleanupGlobalsFlagName     = "cleanup-globals"
	explicitScopesFlagName     = "explicit-scopes"
	checkIdempotentFlagName    = "check-idempotent"
	logFileFlagName            = "log-file"
	verboseFlagName            = "verbose"
	jobsFlagName               = "jobs"

	importStarKey         = "desugar.import_star"
	injectImportKey       = "desugar.inject_import"
	lowerAttributesKey    = "desugar.lower_attributes"
	truthyKey             = "desugar.truthy"
	forceImportRewriteKey = "desugar.force_import_rewrite"
	cleanupGlobalsKey     = "desugar.cleanup_globals"
	explicitScopesKey     = "desugar.explicit_scopes"
	checkIdempotentKey    = "desugar.check_idempotent"
	jobsKey               = "transform.jobs"

	defaultImportStar   = "allowed"
	defaultInjectImport = true
	defaultJobs         = 0 // one per CPU

	logFilenameKey   = "log.filename"
	logLevelKey      = "log.level"
	logVerboseKey    = "log.verbose"
	logMaxSizeKey    = "log.max_size"
	logMaxBackupsKey = "log.max_backups"
	logMaxAgeKey     = "log.max_age"
	logCompressKey   = "log.compress"

	defaultLogFilename   = ".dietpy.log"
	defaultLogLevel      = int(slog.LevelInfo)
	defaultLogVerbose    = false
	defaultLogMaxSize    = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAge     = 28
	defaultLogCompress   = true
)

func init() {
	viper.SetConfigName(configBaseName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configFolderPath)
	viper.SetConfigFile(filepath.Join(configFolderPath, configFileName))
	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	viper.SetDefault(configVersionKey, currentConfigVersion)
	viper.SetDefault(importStarKey, defaultImportStar)
	viper.SetDefault(injectImportKey, defaultInjectImport)
	viper.SetDefault(lowerAttributesKey, false)
	viper.SetDefault(truthyKey, false)
	viper.SetDefault(forceImportRewriteKey, false)
	viper.SetDefault(cleanupGlobalsKey, false)
	viper.SetDefault(explicitScopesKey, false)
	viper.SetDefault(checkIdempotentKey, false)
	viper.SetDefault(jobsKey, defaultJobs)

	viper.SetDefault(logFilenameKey, defaultLogFilename)
	viper.SetDefault(logLevelKey, defaultLogLevel)
	viper.SetDefault(logVerboseKey, defaultLogVerbose)
	viper.SetDefault(logMaxSizeKey, defaultLogMaxSize)
	viper.SetDefault(logMaxBackupsKey, defaultLogMaxBackups)
	viper.SetDefault(logMaxAgeKey, defaultLogMaxAge)
	viper.SetDefault(logCompressKey, defaultLogCompress)

	loadConfig(slog.Default())
}

// loadConfig reads the config file, if there is one. A file that
// cannot be read or parsed is reported to logger and otherwise
// ignored.
func loadConfig(logger *slog.Logger) {
	err := viper.ReadInConfig()
	if err == nil {
		return
	}
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
		return
	}
	logger.Warn("ignoring config file", "file", viper.ConfigFileUsed(), "error", err)
}

// optionsFromConfig returns the desugaring options selected by the
// configuration, environment and flags.
func optionsFromConfig() (*desugar.Options, error) {
	mode, err := desugar.ParseImportStar(viper.GetString(importStarKey))
	if err != nil {
		return nil, err
	}
	return &desugar.Options{
		ImportStar:         mode,
		InjectImport:       viper.GetBool(injectImportKey),
		LowerAttributes:    viper.GetBool(lowerAttributesKey),
		Truthy:             viper.GetBool(truthyKey),
		ForceImportRewrite: viper.GetBool(forceImportRewriteKey),
		CleanupGlobals:     viper.GetBool(cleanupGlobalsKey),
		ExplicitScopes:     viper.GetBool(explicitScopesKey),
		CheckIdempotent:    viper.GetBool(checkIdempotentKey),
		Logger:             slog.Default(),
	}, nil
}

func parseSlogLevel(value string, defaultLevel slog.Level) slog.Level {
	level := strings.ToLower(strings.TrimSpace(value))
	if level == "" {
		return defaultLevel
	}

	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	// Numeric slog levels, e.g. -4 for debug.
	if n, err := strconv.Atoi(level); err == nil {
		return slog.Level(n)
	}

	return defaultLevel
}

// configureLogger installs a global slog logger writing to a rotated
// log file.
//
// It logs at the configured level, Info by default, or at Debug if
// verbose is set.
func configureLogger(logPath string, verbose bool) {
	if strings.TrimSpace(logPath) == "" {
		logPath = defaultLogFilename
	}

	var logLevel slog.Level
	if verbose {
		logLevel = slog.LevelDebug
	} else {
		logLevel = parseSlogLevel(viper.GetString(logLevelKey), slog.LevelInfo)
	}

	logWriter := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    viper.GetInt(logMaxSizeKey),
		MaxBackups: viper.GetInt(logMaxBackupsKey),
		MaxAge:     viper.GetInt(logMaxAgeKey),
		Compress:   viper.GetBool(logCompressKey),
	}

	handler := slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		AddSource: true,
		Level:     logLevel,
	})
	slog.SetDefault(slog.New(handler))
}
