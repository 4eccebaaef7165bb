// Package config provides a type-safe, generic way to load application
// configuration from environment variables.
//
// It wraps `github.com/joho/godotenv` and `github.com/caarlos0/env/v11` to
// deliver a convenient API that:
//
//   - Loads values from one or multiple `.env` files (fallback to the default
//     `.env` in the current working directory).
//   - Parses the environment into any Go struct using field tags.
//   - Exposes a helper that panics on failure (`MustLoad`) for scenarios
//     where configuration is critical.
//
// # Usage
//
// Create a struct describing your configuration and annotate its fields with
// `env` tags:
//
//	type StoreConfig struct {
//	    Namespace string        `env:"AUTH_STORE_NAMESPACE" envDefault:"authkit"`
//	    RedisURL  string        `env:"AUTH_STORE_REDIS_URL"`
//	    FlashTTL  time.Duration `env:"AUTH_FLASH_TTL" envDefault:"10m"`
//	}
//
// Then populate the struct:
//
//	var cfg StoreConfig
//	if err := config.Load(&cfg); err != nil {
//	    log.Fatalf("parsing env: %v", err)
//	}
//
// # Error Handling
//
// The package defines sentinel errors that can be compared with `errors.Is`:
//
//   - `ErrParsingConfig`  – failed to parse env vars into struct.
//   - `ErrLoadingEnvFile` – explicitly requested .env file missing/unreadable.
//   - `ErrNilPointer`     – nil pointer passed to `Load`/`MustLoad`.
package config
