package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/amirasaad/tokenswap/pkg/config"
	"github.com/amirasaad/tokenswap/pkg/submission"
	"github.com/google/uuid"
)

// ExecutionClient submits conversions to a remote execution service over
// HTTP. It POSTs the request as JSON to {URL}/conversions.
type ExecutionClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

type executionResponse struct {
	TransactionID string `json:"transaction_id"`
	Error         string `json:"error,omitempty"`
}

// NewExecutionClient creates a client from execution configuration.
func NewExecutionClient(cfg *config.Execution, logger *slog.Logger) *ExecutionClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExecutionClient{
		baseURL:    strings.TrimSuffix(cfg.URL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger.With("component", "execution-client"),
	}
}

// Execute submits req. A non-2xx answer is returned as an error carrying the
// service's message.
func (c *ExecutionClient) Execute(ctx context.Context, req submission.Request) (submission.Receipt, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return submission.Receipt{}, fmt.Errorf("failed to encode request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/conversions", bytes.NewReader(body))
	if err != nil {
		return submission.Receipt{}, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Idempotency-Key", req.ID.String())
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return submission.Receipt{}, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return submission.Receipt{}, fmt.Errorf("failed to read response: %w", err)
	}
	var out executionResponse
	_ = json.Unmarshal(raw, &out)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := out.Error
		if msg == "" {
			msg = strings.TrimSpace(string(raw))
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		c.logger.Warn("execution rejected", "status", resp.StatusCode, "message", msg)
		return submission.Receipt{}, errors.New(msg)
	}
	if out.TransactionID == "" {
		return submission.Receipt{}, errors.New("execution service returned no transaction id")
	}
	return submission.Receipt{RequestID: req.ID, TransactionID: out.TransactionID}, nil
}

// StubExecutor settles every request locally after a fixed latency.
type StubExecutor struct {
	latency time.Duration
	logger  *slog.Logger
}

// NewStubExecutor creates a stub with the given latency.
func NewStubExecutor(latency time.Duration, logger *slog.Logger) *StubExecutor {
	if logger == nil {
		logger = slog.Default()
	}
	return &StubExecutor{latency: latency, logger: logger.With("component", "stub-executor")}
}

// Execute waits for the latency and returns a random 0x-prefixed hash.
func (s *StubExecutor) Execute(ctx context.Context, req submission.Request) (submission.Receipt, error) {
	if s.latency > 0 {
		timer := time.NewTimer(s.latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return submission.Receipt{}, ctx.Err()
		case <-timer.C:
		}
	}
	txID := "0x" + strings.ReplaceAll(uuid.NewString(), "-", "")
	s.logger.Debug("stub settled conversion", "request_id", req.ID, "transaction_id", txID)
	return submission.Receipt{RequestID: req.ID, TransactionID: txID}, nil
}

var (
	_ submission.Executor = (*ExecutionClient)(nil)
	_ submission.Executor = (*StubExecutor)(nil)
)
