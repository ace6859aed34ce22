// Command bootstrap provisions the hosted backend's database schema.
//
//	bootstrap [-script db/schema.sql] [-env .env]
//	bootstrap migrate [-dsn postgres://...] [-env .env]
//
// The default mode submits the whole script once through the backend's
// exec_sql RPC using BACKEND_URL and BACKEND_SERVICE_KEY. The migrate mode
// connects to Postgres directly and applies the embedded versioned
// migrations that have not run yet.
//
// Exit status is 0 on success, 1 on any failure and 2 on a usage error.
// Do not run two bootstraps against the same backend at the same time.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mmynk/weddingcard/internal/bootstrap"
	"github.com/mmynk/weddingcard/internal/config"
	"github.com/mmynk/weddingcard/internal/storage/postgres"
	"github.com/mmynk/weddingcard/pkg/logging"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Environ(), os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one bootstrap invocation and returns the process exit code.
func run(ctx context.Context, args, environ []string, stderr io.Writer) int {
	if len(args) > 0 && args[0] == "migrate" {
		return runMigrate(ctx, args[1:], environ, stderr)
	}
	return runScript(ctx, args, environ, stderr)
}

func runScript(ctx context.Context, args, environ []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("bootstrap", flag.ContinueOnError)
	fs.SetOutput(stderr)
	script := fs.String("script", "", "SQL script to submit (default $BOOTSTRAP_SCRIPT or "+bootstrap.DefaultScriptPath+")")
	dotenv := fs.String("env", config.DotEnvFile, "optional dotenv file")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(stderr, "unexpected arguments: %v\n", fs.Args())
		fs.Usage()
		return exitUsage
	}

	cfg, logger, code := load(*dotenv, environ, stderr)
	if code != exitOK {
		return code
	}

	routine := cfg.Routine()
	if *script != "" {
		routine.ScriptPath = *script
	}

	logger.Info("Starting schema bootstrap", "backend", routine.BackendURL, "script", routine.ScriptPath)
	err := bootstrap.Run(ctx, routine, bootstrap.NewRPCExecutor(routine), logger)
	if err != nil {
		logger.Error("Schema bootstrap failed", "kind", failureKind(err), "error", err)
		return exitError
	}

	logger.Info("Schema bootstrap completed successfully")
	return exitOK
}

func runMigrate(ctx context.Context, args, environ []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("bootstrap migrate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	dsn := fs.String("dsn", "", "Postgres connection string (default $DATABASE_URL)")
	dotenv := fs.String("env", config.DotEnvFile, "optional dotenv file")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	cfg, logger, code := load(*dotenv, environ, stderr)
	if code != exitOK {
		return code
	}

	target := *dsn
	if target == "" {
		target = cfg.DatabaseURL
	}
	if target == "" {
		logger.Error("Migration failed", "kind", failureKind(bootstrap.ErrConfiguration),
			"error", fmt.Errorf("%w: database URL is not set (-dsn or DATABASE_URL)", bootstrap.ErrConfiguration))
		return exitError
	}

	db, err := postgres.Open(ctx, target)
	if err != nil {
		logger.Error("Migration failed", "kind", "connection", "error", err)
		return exitError
	}
	defer db.Close()

	applied, err := postgres.Migrate(ctx, db)
	if err != nil {
		logger.Error("Migration failed", "applied", applied, "error", err)
		return exitError
	}

	logger.Info("Migrations complete", "applied", applied, "count", len(applied))
	return exitOK
}

// load reads the environment and sets up logging. A non-zero code means the
// caller should stop.
func load(dotenv string, environ []string, stderr io.Writer) (config.Bootstrap, *slog.Logger, int) {
	var cfg config.Bootstrap

	vars, err := config.Environ(dotenv, environ)
	if err == nil {
		err = config.Parse(&cfg, vars)
	}
	logger := logging.New(stderr, cfg.LogLevel)
	if err != nil {
		logger.Error("Schema bootstrap failed", "kind", "configuration", "error", err)
		return cfg, logger, exitError
	}
	return cfg, logger, exitOK
}

func failureKind(err error) string {
	switch {
	case errors.Is(err, bootstrap.ErrConfiguration):
		return "configuration"
	case errors.Is(err, bootstrap.ErrScriptRead):
		return "script read"
	case errors.Is(err, bootstrap.ErrRemoteExecution):
		return "remote execution"
	default:
		return "unexpected"
	}
}
