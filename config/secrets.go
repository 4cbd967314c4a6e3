package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// SecretManager retrieves secrets that should not live in config files
type SecretManager interface {
	GetSecret(key string) (string, error)
}

// EnvSecretManager reads WHITEKNIGHT_<KEY> or, failing that, the file named by
// WHITEKNIGHT_<KEY>_FILE (the Docker secrets convention).
type EnvSecretManager struct{}

// ErrSecretNotSet is returned when neither variable is present
var ErrSecretNotSet = errors.New("secret not set")

func (e *EnvSecretManager) GetSecret(key string) (string, error) {
	envKey := "WHITEKNIGHT_" + strings.ToUpper(key)
	if value := os.Getenv(envKey); value != "" {
		return value, nil
	}

	if path := os.Getenv(envKey + "_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read %s_FILE: %w", envKey, err)
		}
		return strings.TrimSpace(string(data)), nil
	}

	return "", fmt.Errorf("%w: %s", ErrSecretNotSet, envKey)
}

// LoadSecrets overlays secrets from the manager onto the config.
// Unset secrets keep their configured value.
func LoadSecrets(config *Config, manager SecretManager) error {
	if manager == nil {
		manager = &EnvSecretManager{}
	}

	password, err := manager.GetSecret("REDIS_PASSWORD")
	switch {
	case err == nil:
		config.Events.Redis.Password = password
	case !errors.Is(err, ErrSecretNotSet):
		return fmt.Errorf("failed to load redis password: %w", err)
	}

	return nil
}
