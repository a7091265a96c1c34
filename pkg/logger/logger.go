package logger

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Options struct {
	Folder        string
	Filename      string
	DebugFilename string
	Level         string // console level
}

func DefaultOptions() Options {
	return Options{
		Folder:        "./logs",
		Filename:      "macrotracking.log",
		DebugFilename: "macrotracking_debug.log",
		Level:         "info",
	}
}

func New() (*zap.Logger, error) {
	return NewWithOptions(DefaultOptions())
}

// NewWithOptions builds a logger writing to the console (Level and above), an info log file and a
// debug log file holding every level. the files are truncated on start.
func NewWithOptions(opts Options) (*zap.Logger, error) {
	consoleLevel, err := zapcore.ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(opts.Folder, 0o755); err != nil {
		return nil, err
	}

	infoFile, err := os.Create(filepath.Join(opts.Folder, opts.Filename))
	if err != nil {
		return nil, err
	}
	debugFile, err := os.Create(filepath.Join(opts.Folder, opts.DebugFilename))
	if err != nil {
		infoFile.Close()
		return nil, err
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	fileEncoder := zapcore.NewJSONEncoder(encoderCfg)

	consoleCfg := zap.NewDevelopmentEncoderConfig()
	consoleCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	consoleEncoder := zapcore.NewConsoleEncoder(consoleCfg)

	core := zapcore.NewTee(
		zapcore.NewCore(consoleEncoder, zapcore.Lock(os.Stdout), consoleLevel),
		zapcore.NewCore(fileEncoder, zapcore.AddSync(infoFile), zapcore.InfoLevel),
		zapcore.NewCore(fileEncoder, zapcore.AddSync(debugFile), zapcore.DebugLevel),
	)
	return zap.New(core, zap.AddCaller()), nil
}
