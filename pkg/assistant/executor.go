package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Executor performs the side effect of an approved action. One executor
// serves one action type; the registry dispatches by type.
type Executor interface {
	Execute(ctx context.Context, action *PendingAction) error
	Name() string
}

// ExecutorRegistry maps action types to their executors.
type ExecutorRegistry struct {
	executors map[ActionType]Executor
	fallback  Executor
}

// NewExecutorRegistry creates a registry. fallback handles types with no
// dedicated executor; nil fallback makes unknown types an execution error.
func NewExecutorRegistry(fallback Executor) *ExecutorRegistry {
	return &ExecutorRegistry{
		executors: make(map[ActionType]Executor),
		fallback:  fallback,
	}
}

// Register adds an executor for an action type.
func (r *ExecutorRegistry) Register(t ActionType, e Executor) {
	r.executors[t] = e
}

// Get returns the executor for an action type.
func (r *ExecutorRegistry) Get(t ActionType) (Executor, error) {
	if e, ok := r.executors[t]; ok {
		return e, nil
	}
	if r.fallback != nil {
		return r.fallback, nil
	}
	return nil, fmt.Errorf("no executor registered for action type: %s", t)
}

// LogExecutor acknowledges actions without performing a real side effect.
// It is the default when no backend service is configured.
type LogExecutor struct {
	logger Logger
}

// NewLogExecutor creates a log-only executor.
func NewLogExecutor(logger Logger) *LogExecutor {
	if logger == nil {
		logger = NewDefaultLogger()
	}
	return &LogExecutor{logger: logger}
}

func (e *LogExecutor) Name() string { return "log" }

func (e *LogExecutor) Execute(ctx context.Context, action *PendingAction) error {
	e.logger.Info("Executing action",
		"action_id", action.ID,
		"type", action.Type,
		"description", action.Description)
	return nil
}

// defaultServiceTimeout is the HTTP request timeout for the service executor.
const defaultServiceTimeout = 10 * time.Second

// maxServiceResponseSize limits response body reads.
const maxServiceResponseSize = 1 << 20

// ServiceExecutor delivers approved actions to a backend action service over
// HTTP: POST {baseURL}/v1/actions/{type} with a JSON body.
type ServiceExecutor struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewServiceExecutor creates an executor that posts actions to baseURL.
// apiKey, when non-empty, is sent as a Bearer token.
func NewServiceExecutor(baseURL, apiKey string) *ServiceExecutor {
	return &ServiceExecutor{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: defaultServiceTimeout,
		},
	}
}

func (e *ServiceExecutor) Name() string { return "service" }

// actionRequest is the wire shape posted to the action service.
type actionRequest struct {
	ID          string        `json:"id"`
	Type        ActionType    `json:"type"`
	Description string        `json:"description"`
	RiskLevel   RiskLevel     `json:"risk_level"`
	Payload     ActionPayload `json:"payload"`
}

type actionResponse struct {
	Error string `json:"error,omitempty"`
}

func (e *ServiceExecutor) Execute(ctx context.Context, action *PendingAction) error {
	body, err := json.Marshal(actionRequest{
		ID:          action.ID,
		Type:        action.Type,
		Description: action.Description,
		RiskLevel:   action.RiskLevel,
		Payload:     action.Payload,
	})
	if err != nil {
		return fmt.Errorf("marshaling action request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/actions/%s", e.baseURL, action.Type)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building action request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("posting action %s: %w", action.ID, err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxServiceResponseSize))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var ar actionResponse
		if json.Unmarshal(respBody, &ar) == nil && ar.Error != "" {
			return fmt.Errorf("action service rejected %s: %s", action.ID, ar.Error)
		}
		return fmt.Errorf("action service returned %d for %s", resp.StatusCode, action.ID)
	}
	return nil
}
