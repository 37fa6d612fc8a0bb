// Package config loads process configuration. Connection parameters come
// from the environment and are validated at startup: a missing required
// value is a fatal error before anything is scheduled.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Environment variable names.
const (
	EnvRPCURL        = "SOLANA_RPC_URL"
	EnvPostgresDSN   = "POSTGRES_DSN"
	EnvClickHouseDSN = "CLICKHOUSE_DSN"
)

// Storage backend names accepted by the collector.
const (
	BackendPostgres   = "postgres"
	BackendClickHouse = "clickhouse"
	BackendMemory     = "memory"
)

// Env holds environment-sourced connection parameters.
type Env struct {
	RPCURL        string
	PostgresDSN   string
	ClickHouseDSN string
}

// LoadEnv reads connection parameters from the environment, after loading a
// local .env file when one exists. The RPC endpoint is always required;
// store DSNs are validated by RequireDSN once the backend is known.
func LoadEnv() (*Env, error) {
	// .env is a local development convenience; absence is not an error.
	_ = godotenv.Load()

	env := &Env{
		RPCURL:        os.Getenv(EnvRPCURL),
		PostgresDSN:   os.Getenv(EnvPostgresDSN),
		ClickHouseDSN: os.Getenv(EnvClickHouseDSN),
	}

	if env.RPCURL == "" {
		return nil, fmt.Errorf("missing required environment variable %s", EnvRPCURL)
	}

	return env, nil
}

// RequireDSN returns the DSN for the chosen storage backend, failing when
// the corresponding environment variable is absent.
func (e *Env) RequireDSN(backend string) (string, error) {
	switch backend {
	case BackendPostgres:
		if e.PostgresDSN == "" {
			return "", fmt.Errorf("storage backend %q requires %s", backend, EnvPostgresDSN)
		}
		return e.PostgresDSN, nil
	case BackendClickHouse:
		if e.ClickHouseDSN == "" {
			return "", fmt.Errorf("storage backend %q requires %s", backend, EnvClickHouseDSN)
		}
		return e.ClickHouseDSN, nil
	case BackendMemory:
		return "", nil
	default:
		return "", fmt.Errorf("unknown storage backend %q", backend)
	}
}
