package config

import "fmt"

// ConfigurationError reports a required setting that is missing or unusable.
// It is fatal: the process must not serve invocations without it.
type ConfigurationError struct {
	Key    string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("configuration: %s is required", e.Key)
	}
	return fmt.Sprintf("configuration: %s: %s", e.Key, e.Reason)
}

// Required returns a ConfigurationError for a missing key.
func Required(key string) error {
	return &ConfigurationError{Key: key}
}
