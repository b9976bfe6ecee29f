package config

import (
	"fmt"
	"os"
	"strconv"
)

const (
	// DefaultVaultURL is used when KEY_VAULT_URI is unset.
	DefaultVaultURL = "https://azure-resume-kv-default.vault.azure.net/"
	// DefaultSecretName is the vault secret holding the store connection string.
	DefaultSecretName = "cosmos-connection-string"
	DefaultPort       = "8080"
)

// Store backends.
const (
	BackendCosmos = "cosmos"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Config is the process configuration, read once from the environment.
type Config struct {
	VaultURL    string
	SecretName  string
	Environment string
	Backend     string
	ClientID    string // user-assigned managed identity, empty for system-assigned

	// InitialCount seeds the memory backend. Nil when unset.
	InitialCount *int64

	LogLevel string
	LogFile  string
	Port     string
}

// Development reports whether real error text may be returned to clients.
func (c Config) Development() bool {
	return c.Environment == "development"
}

// FromEnv builds a Config from environment variables.
func FromEnv() (Config, error) {
	return Load(os.LookupEnv)
}

// Load builds a Config using lookup to read variables.
func Load(lookup func(string) (string, bool)) (Config, error) {
	get := func(k, def string) string {
		if v, ok := lookup(k); ok && v != "" {
			return v
		}
		return def
	}

	cfg := Config{
		VaultURL:    get("KEY_VAULT_URI", DefaultVaultURL),
		SecretName:  get("CONNECTION_SECRET_NAME", DefaultSecretName),
		Environment: get("ENVIRONMENT", ""),
		Backend:     get("STORE_BACKEND", BackendCosmos),
		ClientID:    get("AZURE_CLIENT_ID", ""),
		LogLevel:    get("LOG_LEVEL", "info"),
		LogFile:     get("LOG_FILE", ""),
		// Azure Functions custom handlers are told which port to bind.
		Port: get("FUNCTIONS_CUSTOMHANDLER_PORT", get("PORT", DefaultPort)),
	}

	switch cfg.Backend {
	case BackendCosmos, BackendRedis, BackendMemory:
	default:
		return Config{}, fmt.Errorf("config: unknown STORE_BACKEND %q", cfg.Backend)
	}

	if seed := get("INITIAL_VISITOR_COUNT", ""); seed != "" {
		v, err := strconv.ParseInt(seed, 10, 64)
		if err != nil || v < 0 {
			return Config{}, fmt.Errorf("config: INITIAL_VISITOR_COUNT must be a non-negative integer, got %q", seed)
		}
		cfg.InitialCount = &v
	}

	return cfg, nil
}
