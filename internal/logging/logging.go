package logging

import (
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// New builds a logger writing to stderr. The console format uses the
// development encoder with colour levels, json uses the production one.
func New(level, format string) (*zap.Logger, error) {
	config, err := buildConfig(level, format)
	if err != nil {
		return nil, err
	}

	config.OutputPaths = []string{"stderr"}
	config.ErrorOutputPaths = []string{"stderr"}

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger, nil
}

// NewWithWriter builds the same logger as New but writes to w
func NewWithWriter(level, format string, w io.Writer) (*zap.Logger, error) {
	config, err := buildConfig(level, format)
	if err != nil {
		return nil, err
	}

	var encoder zapcore.Encoder
	if format == FormatJSON {
		encoder = zapcore.NewJSONEncoder(config.EncoderConfig)
	} else {
		encoder = zapcore.NewConsoleEncoder(config.EncoderConfig)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(w), config.Level)
	return zap.New(core), nil
}

func buildConfig(level, format string) (zap.Config, error) {
	zapLevel, err := ParseLevel(level)
	if err != nil {
		return zap.Config{}, err
	}

	var config zap.Config
	switch format {
	case "", FormatConsole:
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	case FormatJSON:
		config = zap.NewProductionConfig()
	default:
		return zap.Config{}, fmt.Errorf("unknown log format %q", format)
	}

	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.DisableStacktrace = true
	config.Level = zap.NewAtomicLevelAt(zapLevel)
	return config, nil
}

// ParseLevel maps a level name to a zap level, empty means info
func ParseLevel(level string) (zapcore.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel, nil
	case "", "info":
		return zapcore.InfoLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", level)
	}
}
