package llm

import (
	"context"
	"fmt"
	"strings"
)

// Role represents the role of a message sender in a conversation.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message represents a single message in a conversation.
type Message struct {
	Role    Role
	Content string
}

// CompletionRequest contains the parameters for a completion request.
type CompletionRequest struct {
	Model       string
	Messages    []Message
	MaxTokens   int
	Temperature float64
	JSONMode    bool
}

// CompletionResponse contains the result of a completion request.
type CompletionResponse struct {
	Content      string
	InputTokens  int
	OutputTokens int
	Model        string
	FinishReason string
}

// Provider defines the interface for LLM backends.
type Provider interface {
	// Complete sends a completion request and returns the response.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
	// Name returns the name of this provider.
	Name() string
}

// Options configures NewProvider.
type Options struct {
	Provider string // "openai" or "ollama"
	Model    string
	APIKey   string
	BaseURL  string
}

// NewProvider constructs the configured backend.
func NewProvider(opts Options) (Provider, error) {
	switch strings.ToLower(opts.Provider) {
	case "", "openai":
		if opts.APIKey == "" {
			return nil, fmt.Errorf("openai provider requires an api key")
		}
		return NewOpenAIProvider(opts.APIKey, opts.Model), nil
	case "ollama":
		return NewOllamaProvider(opts.BaseURL, opts.Model), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", opts.Provider)
	}
}

// ExtractJSON pulls the outermost JSON object out of a model reply, tolerating
// code fences and prose around it.
func ExtractJSON(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || start >= end {
		return "{}"
	}
	return text[start : end+1]
}
