// Package config loads server and bootstrap settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/mmynk/weddingcard/internal/bootstrap"
)

// DotEnvFile is read by Environ when present.
const DotEnvFile = ".env"

// Server configures cmd/server.
type Server struct {
	Port           int      `env:"PORT"                 envDefault:"8080"`
	DBPath         string   `env:"DB_PATH"              envDefault:"./data/weddingcard.db"`
	StaticPath     string   `env:"STATIC_PATH"          envDefault:"../frontend/static"`
	JWTSecret      string   `env:"JWT_SECRET,required,notEmpty"`
	EmbedHosts     []string `env:"EMBED_HOSTS"          envSeparator:","`
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	LogLevel       string   `env:"LOG_LEVEL"            envDefault:"info"`
}

// Bootstrap configures cmd/bootstrap. Connection settings are not marked
// required here; bootstrap.Config.Validate reports them so that a missing
// setting surfaces as a configuration error.
type Bootstrap struct {
	BackendURL  string        `env:"BACKEND_URL"`
	ServiceKey  string        `env:"BACKEND_SERVICE_KEY"`
	ScriptPath  string        `env:"BOOTSTRAP_SCRIPT"  envDefault:"db/schema.sql"`
	Timeout     time.Duration `env:"BOOTSTRAP_TIMEOUT" envDefault:"60s"`
	DatabaseURL string        `env:"DATABASE_URL"`
	LogLevel    string        `env:"LOG_LEVEL"         envDefault:"info"`
}

// Routine returns the settings the bootstrap routine needs.
func (b Bootstrap) Routine() bootstrap.Config {
	return bootstrap.Config{
		BackendURL: b.BackendURL,
		ServiceKey: b.ServiceKey,
		ScriptPath: b.ScriptPath,
		Timeout:    b.Timeout,
	}
}

// Parse fills target from environ. A nil environ means the process environment.
func Parse(target any, environ map[string]string) error {
	if err := env.ParseWithOptions(target, env.Options{Environment: environ}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Environ merges the variables of dotenvPath, if that file exists, with
// environ given as KEY=value pairs. Variables from environ win.
func Environ(dotenvPath string, environ []string) (map[string]string, error) {
	vars := make(map[string]string)
	if dotenvPath != "" {
		file, err := godotenv.Read(dotenvPath)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read %s: %w", dotenvPath, err)
		}
		maps.Copy(vars, file)
	}
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if ok {
			vars[key] = value
		}
	}
	return vars, nil
}
