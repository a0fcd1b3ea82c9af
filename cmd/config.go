package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
	m "lcovfilter.dev/pkg/lcovfilter/internal/model"
)

const (
	configVersionKey     = "version"
	currentConfigVersion = 1

	configBaseName   = "lcovfilter"
	configFileName   = configBaseName + ".yaml"
	configFolderPath = "."

	inputFlagName   = "input"
	outputFlagName  = "output"
	rootFlagName    = "root"
	summaryFlagName = "summary"
	dryRunFlagName  = "dry-run"
	verboseFlagName = "verbose"
	logFileFlagName = "log-file"

	inputConfigKey   = "input"
	outputConfigKey  = "output"
	rootConfigKey    = "root"
	summaryConfigKey = "summary"

	defaultInput   = "lcov.info"
	defaultOutput  = "lcov.filtered.info"
	defaultRoot    = "."
	defaultSummary = ""

	envPrefix = "LCOVFILTER"

	rulesManifestKey       = "rules.manifest"
	rulesSourceDirKey      = "rules.source_dir"
	rulesExtensionKey      = "rules.extension"
	rulesTestAnnotationKey = "rules.test_annotation"
	rulesFunctionDefKey    = "rules.function_def"
	rulesTestConfigKey     = "rules.test_config"
	rulesModuleOpenKey     = "rules.module_open"
	rulesLookaheadKey      = "rules.lookahead"
	rulesSourceMarkerKey   = "rules.source_marker"
	rulesTestDirsKey       = "rules.test_dirs"
	rulesTestFilesKey      = "rules.test_files"

	logFilenameKey   = "log.filename"
	logLevelKey      = "log.level"
	logVerboseKey    = "log.verbose"
	logMaxSizeKey    = "log.max_size"
	logMaxBackupsKey = "log.max_backups"
	logMaxAgeKey     = "log.max_age"
	logCompressKey   = "log.compress"

	defaultLogFilename   = ".lcovfilter.log"
	defaultLogLevel      = "info"
	defaultLogVerbose    = false
	defaultLogMaxSize    = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAge     = 28
	defaultLogCompress   = true
)

var globalLogger *slog.Logger

// configErr holds a config file that exists but could not be parsed. It is
// reported when a command runs rather than at startup. Initializing it here
// loads the config before the commands read their flag defaults.
var configErr = readConfig()

// configLoaded reports whether a config file was read.
var configLoaded bool

func readConfig() error {
	viper.SetConfigName(configBaseName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configFolderPath)
	viper.SetConfigFile(filepath.Join(configFolderPath, configFileName))
	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			return nil
		}

		return fmt.Errorf("read config %s: %w", configFileName, err)
	}

	configLoaded = true

	return nil
}

func setDefaults() {
	viper.SetDefault(configVersionKey, currentConfigVersion)
	viper.SetDefault(inputConfigKey, defaultInput)
	viper.SetDefault(outputConfigKey, defaultOutput)
	viper.SetDefault(rootConfigKey, defaultRoot)
	viper.SetDefault(summaryConfigKey, defaultSummary)

	rules := m.DefaultRules()
	viper.SetDefault(rulesManifestKey, rules.Manifest)
	viper.SetDefault(rulesSourceDirKey, rules.SourceDir)
	viper.SetDefault(rulesExtensionKey, rules.Extension)
	viper.SetDefault(rulesTestAnnotationKey, rules.TestAnnotation)
	viper.SetDefault(rulesFunctionDefKey, rules.FunctionDef)
	viper.SetDefault(rulesTestConfigKey, rules.TestConfig)
	viper.SetDefault(rulesModuleOpenKey, rules.ModuleOpen)
	viper.SetDefault(rulesLookaheadKey, rules.Lookahead)
	viper.SetDefault(rulesSourceMarkerKey, rules.SourceMarker)
	viper.SetDefault(rulesTestDirsKey, rules.TestDirs)
	viper.SetDefault(rulesTestFilesKey, rules.TestFiles)

	// Logging defaults (used by config/env and as fallbacks for flags).
	viper.SetDefault(logFilenameKey, defaultLogFilename)
	viper.SetDefault(logLevelKey, defaultLogLevel)
	viper.SetDefault(logVerboseKey, defaultLogVerbose)
	viper.SetDefault(logMaxSizeKey, defaultLogMaxSize)
	viper.SetDefault(logMaxBackupsKey, defaultLogMaxBackups)
	viper.SetDefault(logMaxAgeKey, defaultLogMaxAge)
	viper.SetDefault(logCompressKey, defaultLogCompress)
}

// loadRules reads the recognition rules from configuration.
func loadRules() (m.Rules, error) {
	rules := m.Rules{
		Manifest:       viper.GetString(rulesManifestKey),
		SourceDir:      viper.GetString(rulesSourceDirKey),
		Extension:      viper.GetString(rulesExtensionKey),
		TestAnnotation: viper.GetString(rulesTestAnnotationKey),
		FunctionDef:    viper.GetString(rulesFunctionDefKey),
		TestConfig:     viper.GetString(rulesTestConfigKey),
		ModuleOpen:     viper.GetString(rulesModuleOpenKey),
		Lookahead:      viper.GetInt(rulesLookaheadKey),
		SourceMarker:   viper.GetString(rulesSourceMarkerKey),
		TestDirs:       viper.GetStringSlice(rulesTestDirsKey),
		TestFiles:      viper.GetStringSlice(rulesTestFilesKey),
	}

	if version := viper.GetInt(configVersionKey); version > currentConfigVersion {
		return rules, fmt.Errorf("config version %d is newer than supported version %d", version, currentConfigVersion)
	}

	return rules, nil
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

	// Allow numeric slog levels as well (e.g. -4 for debug).
	if n, err := strconv.Atoi(level); err == nil {
		return slog.Level(n)
	}

	return defaultLevel
}

// configureLogger configures the global slog logger.
//
// By default it logs at the configured level; if verbose is true it logs at Debug.
func configureLogger(logPath string, verbose bool) {
	if strings.TrimSpace(logPath) == "" {
		logPath = viper.GetString(logFilenameKey)
	}

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

	globalLogger = slog.New(handler)
	slog.SetDefault(globalLogger)
}
