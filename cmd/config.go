package cmd

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/viper"
	slogctx "github.com/veqryn/slog-context"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	configVersionKey     = "version"
	currentConfigVersion = 1

	configBaseName   = "pyskel"
	configFileName   = configBaseName + ".yaml"
	configFolderPath = "."

	offlineFlagName   = "offline"
	stdoutFlagName    = "stdout"
	diffFlagName      = "diff"
	parallelFlagName  = "parallel"
	recursiveFlagName = "recursive"
	formatFlagName    = "format"
	addrFlagName      = "addr"
	verboseFlagName   = "verbose"

	serverAddrKey         = "server.addr"
	serverMaxBodyBytesKey = "server.max_body_bytes"

	llmBaseURLKey         = "llm.base_url"
	llmModelKey           = "llm.model"
	llmTimeoutKey         = "llm.timeout"
	llmMaxTokensKey       = "llm.max_tokens"
	llmFallbackOnErrorKey = "llm.fallback_on_error"
	llmTokenKey           = "llm.token"
	llmOfflineKey         = "llm.offline"

	generateParallelKey  = "generate.parallel"
	generateRecursiveKey = "generate.recursive"

	envFileKey = "env_file"

	defaultServerAddr         = ":8000"
	defaultServerMaxBodyBytes = 1 << 20
	defaultLLMBaseURL         = "https://router.huggingface.co/v1"
	defaultLLMModel           = "meta-llama/Meta-Llama-3-8B-Instruct:novita"
	defaultLLMTimeout         = 60 * time.Second
	defaultLLMMaxTokens       = 2500
	defaultLLMFallbackOnError = true
	defaultGenerateParallel   = 1
	defaultGenerateRecursive  = true
	defaultEnvFile            = ".env"

	envPrefix  = "PYSKEL"
	hfTokenEnv = "HF_TOKEN"

	logFilenameKey   = "log.filename"
	logLevelKey      = "log.level"
	logVerboseKey    = "log.verbose"
	logConsoleKey    = "log.console"
	logMaxSizeKey    = "log.max_size"
	logMaxBackupsKey = "log.max_backups"
	logMaxAgeKey     = "log.max_age"
	logCompressKey   = "log.compress"

	defaultLogFilename   = ".pyskel.log"
	defaultLogLevel      = int(slog.LevelInfo)
	defaultLogVerbose    = false
	defaultLogConsole    = false
	defaultLogMaxSize    = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAge     = 28
	defaultLogCompress   = true
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

	viper.SetDefault(configVersionKey, currentConfigVersion)

	viper.SetDefault(serverAddrKey, defaultServerAddr)
	viper.SetDefault(serverMaxBodyBytesKey, defaultServerMaxBodyBytes)

	viper.SetDefault(llmBaseURLKey, defaultLLMBaseURL)
	viper.SetDefault(llmModelKey, defaultLLMModel)
	viper.SetDefault(llmTimeoutKey, defaultLLMTimeout.String())
	viper.SetDefault(llmMaxTokensKey, defaultLLMMaxTokens)
	viper.SetDefault(llmFallbackOnErrorKey, defaultLLMFallbackOnError)
	viper.SetDefault(llmOfflineKey, false)

	viper.SetDefault(generateParallelKey, defaultGenerateParallel)
	viper.SetDefault(generateRecursiveKey, defaultGenerateRecursive)

	viper.SetDefault(envFileKey, defaultEnvFile)

	// Logging defaults (used by config/env and as fallbacks for flags).
	viper.SetDefault(logFilenameKey, defaultLogFilename)
	viper.SetDefault(logLevelKey, defaultLogLevel)
	viper.SetDefault(logVerboseKey, defaultLogVerbose)
	viper.SetDefault(logConsoleKey, defaultLogConsole)
	viper.SetDefault(logMaxSizeKey, defaultLogMaxSize)
	viper.SetDefault(logMaxBackupsKey, defaultLogMaxBackups)
	viper.SetDefault(logMaxAgeKey, defaultLogMaxAge)
	viper.SetDefault(logCompressKey, defaultLogCompress)

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			return
		}

		slog.Warn("ignoring unreadable config file", "file", configFileName, "error", err)
	}
}

// resolveToken finds the model API token: the llm.token setting
// (PYSKEL_LLM_TOKEN), then HF_TOKEN from the environment, then HF_TOKEN from
// the dotenv file named by env_file.
func resolveToken() string {
	if token := strings.TrimSpace(viper.GetString(llmTokenKey)); token != "" {
		return token
	}

	if token := strings.TrimSpace(os.Getenv(hfTokenEnv)); token != "" {
		return token
	}

	return readDotenvToken(viper.GetString(envFileKey))
}

func readDotenvToken(path string) string {
	if strings.TrimSpace(path) == "" {
		return ""
	}

	dotenv := viper.New()
	dotenv.SetConfigFile(path)
	dotenv.SetConfigType("env")

	if err := dotenv.ReadInConfig(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("ignoring unreadable env file", "file", path, "error", err)
		}

		return ""
	}

	return strings.TrimSpace(dotenv.GetString(hfTokenEnv))
}

// llmTimeout accepts durations ("90s") and plain seconds ("90").
func llmTimeout() time.Duration {
	raw := strings.TrimSpace(viper.GetString(llmTimeoutKey))
	if seconds, err := strconv.Atoi(raw); err == nil {
		return time.Duration(seconds) * time.Second
	}

	timeout, err := time.ParseDuration(raw)
	if err != nil || timeout <= 0 {
		return defaultLLMTimeout
	}

	return timeout
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
// By default it logs at Info into a rotating file; if verbose is true it logs
// at Debug. With console set, records go to stderr through tint instead.
// Attributes stored in a context with slogctx are added to every record.
func configureLogger(logPath string, verbose bool, console bool) {
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

	var handler slog.Handler

	if console {
		handler = tint.NewHandler(os.Stderr, &tint.Options{
			Level:      logLevel,
			TimeFormat: time.TimeOnly,
			AddSource:  verbose,
		})
	} else {
		logWriter := &lumberjack.Logger{
			Filename:   logPath,
			MaxSize:    viper.GetInt(logMaxSizeKey),
			MaxBackups: viper.GetInt(logMaxBackupsKey),
			MaxAge:     viper.GetInt(logMaxAgeKey),
			Compress:   viper.GetBool(logCompressKey),
		}

		handler = slog.NewTextHandler(logWriter, &slog.HandlerOptions{
			AddSource: true,
			Level:     logLevel,
		})
	}

	globalLogger = slog.New(slogctx.NewHandler(handler, nil))
	slog.SetDefault(globalLogger)
}
