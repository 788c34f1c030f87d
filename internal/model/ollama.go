package model

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/lily-ai/lily/internal/reliability"
)

// OllamaAdapter talks to an Ollama-compatible /api/chat endpoint.
type OllamaAdapter struct {
	baseURL string
	model   string
	client  *http.Client
}

func NewOllamaAdapter(baseURL, model string, timeoutSeconds int) *OllamaAdapter {
	if timeoutSeconds <= 0 {
		timeoutSeconds = 60
	}
	return &OllamaAdapter{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: time.Duration(timeoutSeconds) * time.Second},
	}
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
	Options  Options   `json:"options"`
}

type chatResponse struct {
	Message Message `json:"message"`
}

func (a *OllamaAdapter) Complete(ctx context.Context, messages []Message, opts Options) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:    a.model,
		Messages: messages,
		Stream:   false,
		Options:  opts,
	})
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	// Transient backend statuses get one retry; timeouts and hard
	// failures surface immediately.
	var lastStatus int
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ErrTimeout
			case <-time.After(reliability.ExponentialBackoff(attempt-1, 200*time.Millisecond, time.Second)):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/api/chat", bytes.NewReader(body))
		if err != nil {
			return "", fmt.Errorf("build chat request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := a.client.Do(req)
		if err != nil {
			if isTimeout(err) {
				return "", ErrTimeout
			}
			return "", fmt.Errorf("model connection: %w", err)
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			lastStatus = resp.StatusCode
			if reliability.IsRetryableHTTPStatus(resp.StatusCode) {
				continue
			}
			return "", &BadStatusError{Code: resp.StatusCode}
		}

		var parsed chatResponse
		err = json.NewDecoder(resp.Body).Decode(&parsed)
		resp.Body.Close()
		if err != nil {
			return "", fmt.Errorf("decode chat response: %w", err)
		}
		return parsed.Message.Content, nil
	}
	return "", &BadStatusError{Code: lastStatus}
}

// Ping reports whether the backend answers at all, for health checks.
func (a *OllamaAdapter) Ping(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return os.IsTimeout(err)
}
