package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var log *zap.Logger
var sugar *zap.SugaredLogger

// Init initializes the global logger used by the CLI and by gateways built
// without an explicit logger. Environment can be "dev", "uat", or "prod".
func Init(service, env, level string) {
	logger, err := build(env, level)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}

	log = logger.Named(service)
	sugar = log.Sugar()

	sugar.Debugw("logger initialized",
		"service", service,
		"env", env,
		"level", level,
	)
}

// New builds a logger that writes to sink instead of stdout. Gateways that log
// to a caller-owned stream (a file, a test buffer) use this.
func New(env, level string, sink zapcore.WriteSyncer) *zap.Logger {
	encCfg := zap.NewProductionEncoderConfig()
	if env == "dev" {
		encCfg = zap.NewDevelopmentEncoderConfig()
	}
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	lvl := zapcore.InfoLevel
	if parsed, err := zapcore.ParseLevel(level); err == nil {
		lvl = parsed
	}

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), sink, lvl)
	return zap.New(core)
}

func build(env, level string) (*zap.Logger, error) {
	var cfg zap.Config

	if env == "dev" {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
	}

	// Level override
	if lvl, err := zapcore.ParseLevel(level); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	return cfg.Build(zap.AddCaller())
}

// L returns the base structured Zap logger (for performance-sensitive paths).
func L() *zap.Logger {
	if log == nil {
		Init("braintree", "prod", "info")
	}
	return log
}

// S returns the Sugared logger (for convenience).
func S() *zap.SugaredLogger {
	if sugar == nil {
		Init("braintree", "prod", "info")
	}
	return sugar
}

// Sync flushes any buffered logs (defer this in main()).
func Sync() {
	if log != nil {
		_ = log.Sync()
	}
}
