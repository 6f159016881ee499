package config

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

// AppName names the root logger and temporary log files.
const AppName = "flipbook"

type LoggerConfig struct {
	Level       string `yaml:"level" validate:"required,oneof=none debug normal"`
	Destination string `yaml:"destination,omitempty" sanitize:"path_clean,assure_dir_exists_for_file" validate:"omitempty,filepath"`
	Mode        string `yaml:"mode,omitempty" validate:"omitempty,oneof=append overwrite"`
}

type LoggingConfig struct {
	FileLogger    LoggerConfig `yaml:"file"`
	ConsoleLogger LoggerConfig `yaml:"console"`
}

// EnableColorOutput checks if colorized output is possible.
func EnableColorOutput(stream *os.File) bool {
	return term.IsTerminal(int(stream.Fd()))
}

func consoleEncoderConfig(stream *os.File) zapcore.EncoderConfig {
	ec := zap.NewDevelopmentEncoderConfig()
	ec.EncodeCaller = nil
	if EnableColorOutput(stream) {
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		ec.TimeKey = zapcore.OmitKey
	} else {
		ec.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	return ec
}

// Prepare returns the program logger. Console output is split: errors go to
// stderr, everything below to stdout. An optional file logger receives a
// copy of every enabled entry.
func (conf *LoggingConfig) Prepare() (*zap.Logger, error) {
	lowEncoder := zapcore.NewConsoleEncoder(consoleEncoderConfig(os.Stdout))
	highEncoder := newEncoder(consoleEncoderConfig(os.Stderr))

	highPriority := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lvl >= zapcore.ErrorLevel
	})

	var consoleHP, consoleLP zapcore.Core
	switch conf.ConsoleLogger.Level {
	case "normal", "debug":
		floor := zapcore.InfoLevel
		if conf.ConsoleLogger.Level == "debug" {
			floor = zapcore.DebugLevel
		}
		consoleLP = zapcore.NewCore(lowEncoder, zapcore.Lock(os.Stdout),
			zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
				return floor <= lvl && lvl < zapcore.ErrorLevel
			}))
		consoleHP = zapcore.NewCore(highEncoder, zapcore.Lock(os.Stderr), highPriority)
	default:
		consoleLP = zapcore.NewNopCore()
		consoleHP = zapcore.NewNopCore()
	}

	var (
		fileCore   = zapcore.NewNopCore()
		redirected string
		level      zap.AtomicLevel
	)
	switch conf.FileLogger.Level {
	case "debug":
		level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "normal":
		level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	if conf.FileLogger.Level == "debug" || conf.FileLogger.Level == "normal" {
		enc := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
		f, err := openLog(conf.FileLogger.Destination, conf.FileLogger.Mode)
		if err != nil {
			if f, err = os.CreateTemp("", AppName+".*.log"); err != nil {
				return nil, fmt.Errorf("unable to access file log destination (%s): %w", conf.FileLogger.Destination, err)
			}
			redirected = f.Name()
		}
		fileCore = zapcore.NewCore(enc, zapcore.Lock(f), level)
	}

	log := zap.New(zapcore.NewTee(consoleHP, consoleLP, fileCore), zap.AddCaller())
	if redirected != "" {
		log.Warn("Log file was redirected to new location", zap.String("location", redirected))
	}
	return log.Named(AppName), nil
}

func openLog(name, mode string) (*os.File, error) {
	if name == "" {
		return nil, errors.New("no destination")
	}
	flags := os.O_CREATE | os.O_WRONLY
	if mode == "append" {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	return os.OpenFile(name, flags, 0644)
}

// consoleEnc prints errors without their verbose form on the console.
type consoleEnc struct {
	zapcore.Encoder
}

func newEncoder(cfg zapcore.EncoderConfig) zapcore.Encoder {
	return consoleEnc{zapcore.NewConsoleEncoder(cfg)}
}

func (c consoleEnc) Clone() zapcore.Encoder {
	return consoleEnc{c.Encoder.Clone()}
}

func (c consoleEnc) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	out := make([]zapcore.Field, 0, len(fields))
	for _, f := range fields {
		if f.Type == zapcore.ErrorType {
			if e, ok := f.Interface.(error); ok {
				f.Interface = errors.New(e.Error())
			}
		}
		out = append(out, f)
	}
	return c.Encoder.EncodeEntry(ent, out)
}
