package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Custom error types for better error handling
var (
	ErrConfigNotFound   = errors.New("config file not found")
	ErrConfigInvalid    = errors.New("invalid config")
	ErrConfigValidation = errors.New("config validation failed")
	ErrConfigUnmarshal  = errors.New("failed to unmarshal config")
)

const (
	// DefaultEnv значение окружения по умолчанию
	DefaultEnv = "dev"
	// ConfigDir директория с конфигурационными файлами
	ConfigDir = "configs"
	// EnvPrefix префикс переменных окружения для ключей без явной привязки
	EnvPrefix = "APP"
)

// Configurable определяет интерфейс для любой конфигурации
type Configurable interface {
	Validate() error
}

// Loader loads configuration from an optional file and the environment.
// The file is optional when the path was derived from APP_ENV: a Lambda
// sandbox usually carries only environment variables.
type Loader struct {
	viper        *viper.Viper
	explicitPath bool
}

// getEnv возвращает текущее окружение
func getEnv() string {
	if env := os.Getenv("APP_ENV"); env != "" {
		return env
	}
	return DefaultEnv
}

// getConfigPath возвращает путь к конфигурационному файлу
func getConfigPath() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}
	env := getEnv()
	return filepath.Join(ConfigDir, fmt.Sprintf("%s.yaml", env))
}

// NewLoader создает новый загрузчик конфигурации
func NewLoader(configPath string) *Loader {
	v := viper.New()

	explicit := configPath != ""
	// Если путь не указан, используем путь по умолчанию
	if !explicit {
		configPath = getConfigPath()
	}

	v.SetConfigFile(configPath)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Loader{
		viper:        v,
		explicitPath: explicit,
	}
}

// Load загружает конфигурацию из файла и окружения в переданную структуру
func (l *Loader) Load(cfg Configurable) error {
	if err := l.readConfigFile(); err != nil {
		return err
	}

	if err := l.viper.UnmarshalExact(cfg); err != nil {
		return fmt.Errorf("%w: %v", ErrConfigUnmarshal, err)
	}

	// Проверка конфигурации; причина сохраняется для errors.As
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrConfigValidation, err)
	}

	return nil
}

func (l *Loader) readConfigFile() error {
	path := l.viper.ConfigFileUsed()
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) && !l.explicitPath {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrConfigNotFound, err)
	}

	if err := l.viper.ReadInConfig(); err != nil {
		return fmt.Errorf("%w: failed to read config file: %v", ErrConfigInvalid, err)
	}
	return nil
}

// GetConfigPath возвращает путь к файлу конфигурации
func (l *Loader) GetConfigPath() string {
	return l.viper.ConfigFileUsed()
}

// SetConfigPath устанавливает путь к файлу конфигурации
func (l *Loader) SetConfigPath(path string) {
	l.viper.SetConfigFile(path)
	l.explicitPath = path != ""
}

// GetConfigDir возвращает директорию с конфигурацией
func (l *Loader) GetConfigDir() string {
	return filepath.Dir(l.viper.ConfigFileUsed())
}

// Load загружает конфигурацию из файла в переданную структуру
func Load(cfg Configurable, configPath string) error {
	loader := NewLoader(configPath)
	return loader.Load(cfg)
}

// BindEnv привязывает ключ к одной или нескольким переменным окружения без
// префикса. Побеждает первая установленная переменная.
func (l *Loader) BindEnv(key string, envVars ...string) {
	input := append([]string{key}, envVars...)
	// BindEnv returns an error only when called without a key.
	_ = l.viper.BindEnv(input...)
}

// GetString возвращает строковое значение из конфигурации
func (l *Loader) GetString(key string) string {
	return l.viper.GetString(key)
}

// GetStringSlice возвращает массив строк из конфигурации
func (l *Loader) GetStringSlice(key string) []string {
	return l.viper.GetStringSlice(key)
}

// GetInt возвращает целочисленное значение из конфигурации
func (l *Loader) GetInt(key string) int {
	return l.viper.GetInt(key)
}

// GetBool возвращает булево значение из конфигурации
func (l *Loader) GetBool(key string) bool {
	return l.viper.GetBool(key)
}

// GetDuration возвращает значение длительности из конфигурации
func (l *Loader) GetDuration(key string) time.Duration {
	return l.viper.GetDuration(key)
}

// SetDefault устанавливает значение по умолчанию для ключа
func (l *Loader) SetDefault(key string, value interface{}) {
	l.viper.SetDefault(key, value)
}

// GetEnv возвращает текущее окружение
func GetEnv() string {
	return getEnv()
}
