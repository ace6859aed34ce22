package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
)

// fakeBackend answers exec_sql calls with status and counts them.
func fakeBackend(t *testing.T, status int, body string) (*httptest.Server, *atomic.Int32, *atomic.Value) {
	t.Helper()
	var calls atomic.Int32
	var lastQuery atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		var req struct {
			Query string `json:"query"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		lastQuery.Store(req.Query)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server, &calls, &lastQuery
}

func scriptFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schema.sql")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}
	return path
}

// noDotEnv keeps a developer's .env out of the test.
func noDotEnv(t *testing.T) string {
	return filepath.Join(t.TempDir(), "absent.env")
}

func TestRunSucceeds(t *testing.T) {
	backend, calls, lastQuery := fakeBackend(t, http.StatusOK, "null")
	script := scriptFile(t, "CREATE TABLE IF NOT EXISTS invitations (id uuid);")

	var stderr bytes.Buffer
	code := run(context.Background(),
		[]string{"-script", script, "-env", noDotEnv(t)},
		[]string{"BACKEND_URL=" + backend.URL, "BACKEND_SERVICE_KEY=service-key"},
		&stderr)

	if code != exitOK {
		t.Fatalf("expected exit 0, got %d: %s", code, stderr.String())
	}
	if calls.Load() != 1 {
		t.Errorf("expected exactly one remote call, got %d", calls.Load())
	}
	if got, _ := lastQuery.Load().(string); !strings.Contains(got, "CREATE TABLE IF NOT EXISTS invitations") {
		t.Errorf("expected script text to be submitted, got %q", got)
	}
	if !strings.Contains(stderr.String(), "completed successfully") {
		t.Errorf("expected success log, got %q", stderr.String())
	}
}

func TestRunFailures(t *testing.T) {
	script := "CREATE TABLE t (id int);"

	tests := []struct {
		name      string
		status    int
		body      string
		script    func(t *testing.T) string
		withCreds bool
		wantLog   string
		wantCalls int32
	}{
		{
			name:      "missing configuration",
			status:    http.StatusOK,
			script:    func(t *testing.T) string { return scriptFile(t, script) },
			wantLog:   "configuration",
			wantCalls: 0,
		},
		{
			name:      "missing script",
			status:    http.StatusOK,
			script:    func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.sql") },
			withCreds: true,
			wantLog:   "script read",
			wantCalls: 0,
		},
		{
			name:      "remote rejects script",
			status:    http.StatusBadRequest,
			body:      `{"message":"syntax error at or near \"CREAT\""}`,
			script:    func(t *testing.T) string { return scriptFile(t, "CREAT TABLE t;") },
			withCreds: true,
			wantLog:   "syntax error",
			wantCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend, calls, _ := fakeBackend(t, tt.status, tt.body)
			var environ []string
			if tt.withCreds {
				environ = []string{"BACKEND_URL=" + backend.URL, "BACKEND_SERVICE_KEY=service-key"}
			}

			var stderr bytes.Buffer
			code := run(context.Background(), []string{"-script", tt.script(t), "-env", noDotEnv(t)}, environ, &stderr)

			if code != exitError {
				t.Fatalf("expected exit 1, got %d", code)
			}
			if calls.Load() != tt.wantCalls {
				t.Errorf("expected %d remote calls, got %d", tt.wantCalls, calls.Load())
			}
			if !strings.Contains(stderr.String(), tt.wantLog) {
				t.Errorf("expected %q in diagnostic, got %q", tt.wantLog, stderr.String())
			}
		})
	}
}

func TestRunReadsDotEnv(t *testing.T) {
	backend, calls, _ := fakeBackend(t, http.StatusOK, "null")
	dotenv := filepath.Join(t.TempDir(), ".env")
	content := "BACKEND_URL=" + backend.URL + "\nBACKEND_SERVICE_KEY=from-file\nBOOTSTRAP_SCRIPT=" + scriptFile(t, "SELECT 1;") + "\n"
	if err := os.WriteFile(dotenv, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	var stderr bytes.Buffer
	if code := run(context.Background(), []string{"-env", dotenv}, nil, &stderr); code != exitOK {
		t.Fatalf("expected exit 0, got %d: %s", code, stderr.String())
	}
	if calls.Load() != 1 {
		t.Errorf("expected one remote call, got %d", calls.Load())
	}
}

func TestRunUsageErrors(t *testing.T) {
	for _, args := range [][]string{
		{"-unknown"},
		{"extra-arg"},
		{"migrate", "-unknown"},
	} {
		var stderr bytes.Buffer
		if code := run(context.Background(), args, nil, &stderr); code != exitUsage {
			t.Errorf("run(%v): expected exit 2, got %d", args, code)
		}
	}
}

func TestMigrateRequiresDSN(t *testing.T) {
	var stderr bytes.Buffer
	code := run(context.Background(), []string{"migrate", "-env", noDotEnv(t)}, nil, &stderr)
	if code != exitError {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if !strings.Contains(stderr.String(), "DATABASE_URL") {
		t.Errorf("expected DATABASE_URL in diagnostic, got %q", stderr.String())
	}
}
