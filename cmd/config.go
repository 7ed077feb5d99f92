package cmd

import (
	"errors"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	configVersionKey     = "version"
	currentConfigVersion = 1

	configBaseName   = "relimport"
	configFileName   = configBaseName + ".yaml"
	configFolderPath = "."

	projectFlagName     = "project"
	scopeFlagName       = "scope"
	packagesFlagName    = "packages"
	packagesDirFlagName = "packages-dir"
	modeFlagName        = "mode"
	includeFlagName     = "include"
	excludeDirFlagName  = "exclude-dir"
	diffFlagName        = "diff"
	reportFlagName      = "report"
	logFileFlagName     = "log-file"
	verboseFlagName     = "verbose"

	projectConfigKey     = "project"
	sourceConfigKey      = "source"
	scopeConfigKey       = "scope"
	packagesConfigKey    = "packages"
	packagesDirConfigKey = "packages_dir"
	modeConfigKey        = "mode"
	includeConfigKey     = "paths.include"
	excludeDirsConfigKey = "paths.exclude_dirs"
	diffConfigKey        = "output.diff"
	reportConfigKey      = "output.report"

	defaultProjectDir = "."
	defaultSourceDir  = "src"
	defaultScope      = "@ankaa"
	defaultMode       = "deep"

	envPrefix = "RELIMPORT"

	logFilenameKey   = "log.filename"
	logLevelKey      = "log.level"
	logVerboseKey    = "log.verbose"
	logMaxSizeKey    = "log.max_size"
	logMaxBackupsKey = "log.max_backups"
	logMaxAgeKey     = "log.max_age"
	logCompressKey   = "log.compress"

	defaultLogFilename   = ".relimport.log"
	defaultLogLevel      = int(slog.LevelInfo)
	defaultLogVerbose    = false
	defaultLogMaxSize    = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAge     = 28
	defaultLogCompress   = true
)

var (
	defaultPackages    = []string{"constants", "types", "utils", "schemas", "api-client", "hooks"}
	defaultInclude     = []string{"*.ts", "*.tsx"}
	defaultExcludeDirs = []string{"node_modules", ".git"}
)

var globalLogger *slog.Logger

func init() {
	viper.SetConfigName(configBaseName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configFolderPath)
	viper.SetConfigFile(filepath.Join(configFolderPath, configFileName))
	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	setConfigDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return
		}

		return
	}
}

func setConfigDefaults() {
	viper.SetDefault(configVersionKey, currentConfigVersion)
	viper.SetDefault(projectConfigKey, defaultProjectDir)
	viper.SetDefault(sourceConfigKey, defaultSourceDir)
	viper.SetDefault(scopeConfigKey, defaultScope)
	viper.SetDefault(packagesConfigKey, defaultPackages)
	viper.SetDefault(packagesDirConfigKey, "")
	viper.SetDefault(modeConfigKey, defaultMode)
	viper.SetDefault(includeConfigKey, defaultInclude)
	viper.SetDefault(excludeDirsConfigKey, defaultExcludeDirs)
	viper.SetDefault(diffConfigKey, false)
	viper.SetDefault(reportConfigKey, "")

	// Logging defaults (used by config/env and as fallbacks for flags).
	viper.SetDefault(logFilenameKey, defaultLogFilename)
	viper.SetDefault(logLevelKey, defaultLogLevel)
	viper.SetDefault(logVerboseKey, defaultLogVerbose)
	viper.SetDefault(logMaxSizeKey, defaultLogMaxSize)
	viper.SetDefault(logMaxBackupsKey, defaultLogMaxBackups)
	viper.SetDefault(logMaxAgeKey, defaultLogMaxAge)
	viper.SetDefault(logCompressKey, defaultLogCompress)
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
// By default it logs at Info; if verbose is true it logs at Debug.
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
