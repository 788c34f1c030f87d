package model

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Message is one entry in the chat transcript sent to the model.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Options tune the generative sampling.
type Options struct {
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
	TopK        int     `json:"top_k"`
}

// ErrTimeout reports that the model did not answer within the deadline.
var ErrTimeout = errors.New("model request timed out")

// BadStatusError reports a non-success HTTP status from the model backend.
type BadStatusError struct {
	Code int
}

func (e *BadStatusError) Error() string {
	return fmt.Sprintf("model backend returned status %d", e.Code)
}

// Adapter is the thin client contract to the external generative model.
type Adapter interface {
	Complete(ctx context.Context, messages []Message, opts Options) (string, error)
}

// NewAdapter selects a backend by mode: "ollama" talks to an
// Ollama-compatible chat endpoint, "mock" answers locally, "auto" prefers
// ollama when a URL is configured.
func NewAdapter(mode, ollamaURL, modelName string, timeoutSeconds int) (Adapter, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "auto":
		if strings.TrimSpace(ollamaURL) != "" {
			return NewOllamaAdapter(ollamaURL, modelName, timeoutSeconds), nil
		}
		return NewMockAdapter(), nil
	case "ollama":
		if strings.TrimSpace(ollamaURL) == "" {
			return nil, errors.New("ollama URL is required for ollama mode")
		}
		return NewOllamaAdapter(ollamaURL, modelName, timeoutSeconds), nil
	case "mock":
		return NewMockAdapter(), nil
	default:
		return nil, fmt.Errorf("unsupported model adapter mode %q", mode)
	}
}
