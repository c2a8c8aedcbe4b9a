package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	defaultDir        = "logs"
	defaultFilename   = "pizzabot.log"
	defaultMaxSizeMB  = 50
	defaultMaxBackups = 5
	defaultMaxAgeDays = 14
)

type Options struct {
	Dir        string
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// L is the process-wide logger, set by Init.
var L *zap.Logger

var (
	fallbackOnce sync.Once
	fallbackLog  *zap.Logger
)

// Init builds the global logger. Mode "debug" logs to stdout in console format,
// anything else writes JSON to a rotating file.
func Init(mode string, options Options) *zap.Logger {
	L = New(mode, options)
	zap.ReplaceGlobals(L)
	return L
}

func New(mode string, options Options) *zap.Logger {
	debug := strings.EqualFold(strings.TrimSpace(mode), "debug")
	level := zap.NewAtomicLevelAt(zap.InfoLevel)
	if debug {
		level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	if debug {
		return build(zapcore.NewConsoleEncoder(encoderConfig()), zapcore.AddSync(os.Stdout), level)
	}

	ws, err := fileSyncer(options)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: falling back to stdout: %v\n", err)
		ws = zapcore.AddSync(os.Stdout)
	}
	return build(zapcore.NewJSONEncoder(encoderConfig()), ws, level)
}

// Z never returns nil, so packages can log before Init ran (tests).
func Z() *zap.Logger {
	if L != nil {
		return L
	}
	return fallback()
}

func S() *zap.SugaredLogger { return Z().Sugar() }

func Debugw(msg string, kv ...interface{}) { S().Debugw(msg, kv...) }
func Infow(msg string, kv ...interface{})  { S().Infow(msg, kv...) }
func Warnw(msg string, kv ...interface{})  { S().Warnw(msg, kv...) }
func Errorw(msg string, kv ...interface{}) { S().Errorw(msg, kv...) }

func encoderConfig() zapcore.EncoderConfig {
	c := zap.NewProductionEncoderConfig()
	c.TimeKey = "time"
	c.MessageKey = "message"
	c.EncodeTime = zapcore.ISO8601TimeEncoder
	c.EncodeDuration = zapcore.MillisDurationEncoder
	c.EncodeLevel = zapcore.LowercaseLevelEncoder
	c.EncodeCaller = zapcore.ShortCallerEncoder
	return c
}

func build(enc zapcore.Encoder, ws zapcore.WriteSyncer, level zap.AtomicLevel) *zap.Logger {
	return zap.New(zapcore.NewCore(enc, ws, level), zap.AddCaller(), zap.AddCallerSkip(1))
}

func fallback() *zap.Logger {
	fallbackOnce.Do(func() {
		fallbackLog = build(zapcore.NewConsoleEncoder(encoderConfig()), zapcore.AddSync(os.Stdout),
			zap.NewAtomicLevelAt(zap.InfoLevel))
	})
	return fallbackLog
}

func fileSyncer(o Options) (zapcore.WriteSyncer, error) {
	dir := strings.TrimSpace(o.Dir)
	if dir == "" {
		dir = defaultDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	name := strings.TrimSpace(o.Filename)
	if name == "" {
		name = defaultFilename
	}
	path := filepath.Join(dir, name)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	_ = f.Close()

	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    positive(o.MaxSizeMB, defaultMaxSizeMB),
		MaxBackups: positive(o.MaxBackups, defaultMaxBackups),
		MaxAge:     positive(o.MaxAgeDays, defaultMaxAgeDays),
		Compress:   true,
	}), nil
}

func positive(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}
