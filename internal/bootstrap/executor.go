package bootstrap

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gojektech/heimdall/v6/httpclient"
)

// ExecSQLFunction is the backend RPC that executes raw SQL.
const ExecSQLFunction = "exec_sql"

// RPCExecutor submits scripts to the backend's SQL-execution RPC endpoint.
type RPCExecutor struct {
	client     *httpclient.Client
	endpoint   string
	serviceKey string
}

// NewRPCExecutor creates an executor for cfg. The HTTP client never retries:
// a script is submitted at most once.
func NewRPCExecutor(cfg Config) *RPCExecutor {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	client := httpclient.NewClient(
		httpclient.WithHTTPTimeout(timeout),
		httpclient.WithRetryCount(0),
	)

	return &RPCExecutor{
		client:     client,
		endpoint:   strings.TrimRight(cfg.BackendURL, "/") + "/rest/v1/rpc/" + ExecSQLFunction,
		serviceKey: cfg.ServiceKey,
	}
}

type execSQLRequest struct {
	Query string `json:"query"`
}

type backendError struct {
	Message string `json:"message"`
	Hint    string `json:"hint"`
	Details string `json:"details"`
}

// Exec posts the script and maps any non-2xx response to ErrRemoteExecution.
func (e *RPCExecutor) Exec(ctx context.Context, script string) error {
	body, err := json.Marshal(execSQLRequest{Query: script})
	if err != nil {
		return fmt.Errorf("%w: encode request: %v", ErrRemoteExecution, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: build request: %v", ErrRemoteExecution, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", e.serviceKey)
	req.Header.Set("Authorization", "Bearer "+e.serviceKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRemoteExecution, err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode >= http.StatusBadRequest {
		msg := resp.Status
		var be backendError
		if json.Unmarshal(respBody, &be) == nil && be.Message != "" {
			msg = be.Message
			if be.Details != "" {
				msg += " (" + be.Details + ")"
			}
		}
		return fmt.Errorf("%w: %s", ErrRemoteExecution, msg)
	}

	return nil
}

// SQLExecutor runs scripts directly on a database handle.
type SQLExecutor struct {
	DB *sql.DB
}

// Exec runs the script as one statement batch.
func (e SQLExecutor) Exec(ctx context.Context, script string) error {
	if _, err := e.DB.ExecContext(ctx, script); err != nil {
		return fmt.Errorf("%w: %v", ErrRemoteExecution, err)
	}
	return nil
}
