package logger

import (
	"sync"
)

// GlobalConfig представляет глобальные настройки приложения для логгера
type GlobalConfig struct {
	// Основная конфигурация логгера
	Logger Config `mapstructure:"logger"`

	// Информация о приложении
	Application ApplicationInfo `mapstructure:"application"`

	// Глобальные поля, которые будут добавлены ко всем сообщениям
	GlobalFields map[string]any `mapstructure:"global_fields"`
}

// ApplicationInfo содержит информацию о приложении
type ApplicationInfo struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"` // dev, staging, prod
}

var (
	globalConfigLock sync.RWMutex
	componentLoggers sync.Map // map[string]*Logger
)

// InitGlobal инициализирует глобальный логгер с полями приложения
func InitGlobal(cfg GlobalConfig) error {
	globalConfigLock.Lock()
	defer globalConfigLock.Unlock()

	if cfg.Application.Environment == "" {
		cfg.Application.Environment = "development"
	}

	baseLogger, err := New(cfg.Logger)
	if err != nil {
		return err
	}

	ctx := baseLogger.With()
	if cfg.Application.Name != "" {
		ctx = ctx.Str("service", cfg.Application.Name)
	}
	if cfg.Application.Version != "" {
		ctx = ctx.Str("app_version", cfg.Application.Version)
	}
	ctx = ctx.Str("environment", cfg.Application.Environment)
	for key, value := range cfg.GlobalFields {
		ctx = ctx.Interface(key, value)
	}

	SetGlobal(FromZerolog(ctx.Logger()))
	return nil
}

// Component возвращает логгер для компонента
func Component(name string) *Logger {
	if cached, ok := componentLoggers.Load(name); ok {
		return cached.(*Logger)
	}

	globalConfigLock.RLock()
	defer globalConfigLock.RUnlock()

	l := GetGlobal().WithField("component", name)
	componentLoggers.Store(name, l)
	return l
}
