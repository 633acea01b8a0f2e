package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

var global = &Logger{logger: zerolog.New(os.Stdout).With().Timestamp().Logger()}

// Config представляет конфигурацию логгера
type Config struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"` // json или console
	Output     string `mapstructure:"output"` // stdout, stderr или путь к файлу
	TimeFormat string `mapstructure:"time_format"`

	// LogEvent включает запись входящего события в лог (может содержать чувствительные данные)
	LogEvent bool `mapstructure:"log_event"`

	// Writer overrides Output when set.
	Writer io.Writer `mapstructure:"-"`
}

// Logger представляет собой обертку над zerolog.Logger
type Logger struct {
	logger zerolog.Logger
}

// New создает новый экземпляр логгера
func New(cfg Config) (*Logger, error) {
	cfg = sanitize(&cfg)

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	zerolog.TimeFieldFormat = cfg.TimeFormat

	var output io.Writer
	switch {
	case cfg.Writer != nil:
		output = cfg.Writer
	case cfg.Output == "stderr":
		output = os.Stderr
	case cfg.Output == "stdout":
		output = os.Stdout
	default:
		file, err := os.OpenFile(cfg.Output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, err
		}
		output = file
	}

	if cfg.Format == "console" {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: cfg.TimeFormat,
		}
	}

	return &Logger{
		logger: zerolog.New(output).Level(level).With().Timestamp().Logger(),
	}, nil
}

// FromZerolog оборачивает готовый zerolog.Logger
func FromZerolog(l zerolog.Logger) *Logger {
	return &Logger{logger: l}
}

// Debug логирует сообщение с уровнем Debug
func (l *Logger) Debug() *zerolog.Event {
	return l.logger.Debug()
}

// Info логирует сообщение с уровнем Info
func (l *Logger) Info() *zerolog.Event {
	return l.logger.Info()
}

// Warn логирует сообщение с уровнем Warn
func (l *Logger) Warn() *zerolog.Event {
	return l.logger.Warn()
}

// Error логирует сообщение с уровнем Error
func (l *Logger) Error() *zerolog.Event {
	return l.logger.Error()
}

// Fatal логирует сообщение с уровнем Fatal и завершает программу
func (l *Logger) Fatal() *zerolog.Event {
	return l.logger.Fatal()
}

// With возвращает контекст для добавления полей
func (l *Logger) With() zerolog.Context {
	return l.logger.With()
}

// WithField возвращает новый логгер с одним дополнительным полем
func (l *Logger) WithField(key string, value any) *Logger {
	return &Logger{logger: l.logger.With().Interface(key, value).Logger()}
}

// WithContext сохраняет логгер в контексте
func (l *Logger) WithContext(ctx context.Context) context.Context {
	return l.logger.WithContext(ctx)
}

func (l *Logger) Log() zerolog.Logger {
	return l.logger
}

// Ctx возвращает логгер из контекста или глобальный, если его там нет
func Ctx(ctx context.Context) *Logger {
	if zl := zerolog.Ctx(ctx); zl != nil && zl.GetLevel() != zerolog.Disabled {
		return &Logger{logger: *zl}
	}
	return GetGlobal()
}

// Init создает логгер по конфигурации и делает его глобальным
func Init(cfg Config) error {
	l, err := New(cfg)
	if err != nil {
		return err
	}
	SetGlobal(l)
	return nil
}

// SetGlobal заменяет глобальный логгер и сбрасывает кэш компонентов
func SetGlobal(l *Logger) {
	if l == nil {
		return
	}
	global = l
	componentLoggers.Range(func(key, _ any) bool {
		componentLoggers.Delete(key)
		return true
	})
}

func GetGlobal() *Logger {
	return global
}

func Debug() *zerolog.Event { return global.Debug() }
func Info() *zerolog.Event  { return global.Info() }
func Warn() *zerolog.Event  { return global.Warn() }
func Error() *zerolog.Event { return global.Error() }
func Fatal() *zerolog.Event { return global.Fatal() }

// sanitize ensures the Config struct is populated with default values when fields are empty.
func sanitize(cfg *Config) Config {
	if cfg.Level == "" {
		cfg.Level = "info"
	}
	if cfg.Format == "" {
		cfg.Format = "json"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
	if cfg.TimeFormat == "" {
		cfg.TimeFormat = time.RFC3339
	}
	return *cfg
}
