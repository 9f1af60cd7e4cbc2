package logger

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// FileName is the active log file inside Config.Dir
const FileName = "easydiary.log"

var (
	// Logger is the process logger. Nil until Init; the helpers below are
	// no-ops in that state so packages can log from tests without setup.
	Logger *log.Logger

	mu   sync.Mutex
	file *lumberjack.Logger
)

type Config struct {
	Debug bool
	Dir   string
}

// Init points the process logger at a rotating file in cfg.Dir. Debug
// lowers the level and mirrors output to stderr.
func Init(cfg Config) error {
	if cfg.Dir == "" {
		return errors.New("logger: no log directory configured")
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()
	if file != nil {
		file.Close()
	}
	file = &lumberjack.Logger{
		Filename:   filepath.Join(cfg.Dir, FileName),
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}

	opts := log.Options{
		ReportTimestamp: true,
		Level:           log.InfoLevel,
		Prefix:          "easydiary",
	}
	var w io.Writer = file
	if cfg.Debug {
		opts.Level = log.DebugLevel
		opts.ReportCaller = true
		w = io.MultiWriter(os.Stderr, file)
	}
	Logger = log.NewWithOptions(w, opts)
	return nil
}

// File returns the active log file, or "" before Init
func File() string {
	mu.Lock()
	defer mu.Unlock()
	if file == nil {
		return ""
	}
	return file.Filename
}

// Close flushes and releases the log file
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if file == nil {
		return nil
	}
	err := file.Close()
	file = nil
	Logger = nil
	return err
}

// Component returns a logger tagged with the emitting package
func Component(name string) *log.Logger {
	if Logger == nil {
		return log.New(io.Discard)
	}
	return Logger.WithPrefix("easydiary/" + name)
}

func Debug(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Debug(msg, keyvals...)
	}
}

func Info(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Info(msg, keyvals...)
	}
}

func Warn(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Warn(msg, keyvals...)
	}
}

func Error(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Error(msg, keyvals...)
	}
}
