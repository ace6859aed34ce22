// Package bootstrap provisions the hosted backend's schema from a SQL script.
//
// Run is a one-shot, human-supervised procedure: it validates its
// configuration, reads the script, submits the whole text as a single
// operation and reports. There is no retry and no rollback of a partially
// applied script. Rerunning is only as safe as the script's own guards
// (CREATE ... IF NOT EXISTS and the like). Two runs must not target the same
// backend at once.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
)

// DefaultScriptPath is where the bootstrap script lives relative to the
// repository root.
const DefaultScriptPath = "db/schema.sql"

var (
	// ErrConfiguration means required connection settings are missing or malformed.
	ErrConfiguration = errors.New("configuration error")
	// ErrScriptRead means the SQL script could not be read.
	ErrScriptRead = errors.New("script read error")
	// ErrRemoteExecution means the backend rejected or failed the script.
	// The script may have been partially applied.
	ErrRemoteExecution = errors.New("remote execution error")
)

// Config holds everything Run needs. It is passed in explicitly rather than
// read from the process environment.
type Config struct {
	// BackendURL is the base URL of the backend-as-a-service project.
	BackendURL string
	// ServiceKey is the privileged access key for the backend.
	ServiceKey string
	// ScriptPath is the SQL script to submit.
	ScriptPath string
	// Timeout bounds the remote call.
	Timeout time.Duration
}

// Validate reports missing or malformed settings, naming every problem.
func (c Config) Validate() error {
	var problems []string
	if strings.TrimSpace(c.BackendURL) == "" {
		problems = append(problems, "backend URL is not set")
	} else if !strings.HasPrefix(c.BackendURL, "http://") && !strings.HasPrefix(c.BackendURL, "https://") {
		problems = append(problems, "backend URL must start with http:// or https://")
	}
	if strings.TrimSpace(c.ServiceKey) == "" {
		problems = append(problems, "service key is not set")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrConfiguration, strings.Join(problems, "; "))
	}
	return nil
}

// Executor runs a SQL script as one opaque operation.
type Executor interface {
	Exec(ctx context.Context, script string) error
}

// Run validates cfg, reads the script and submits it through exec.
// Each step only runs if the previous one succeeded: a configuration error
// never touches the filesystem and a read error never reaches the backend.
func Run(ctx context.Context, cfg Config, exec Executor, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	path := cfg.ScriptPath
	if path == "" {
		path = DefaultScriptPath
	}

	script, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrScriptRead, path, err)
	}
	if strings.TrimSpace(string(script)) == "" {
		return fmt.Errorf("%w: %s is empty", ErrScriptRead, path)
	}
	logger.Info("Loaded schema script", "path", path, "bytes", len(script))

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	if err := exec.Exec(ctx, string(script)); err != nil {
		if errors.Is(err, ErrRemoteExecution) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrRemoteExecution, err)
	}

	logger.Info("Schema script executed", "path", path, "duration_ms", time.Since(start).Milliseconds())
	return nil
}
