package oracle

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"scriptsmith/internal/config"
	"scriptsmith/internal/errors"
)

// AnthropicClient backs the oracle with the Anthropic Messages API.
type AnthropicClient struct {
	inner       anthropic.Client
	model       anthropic.Model
	temperature float64
	maxTokens   int
}

// NewAnthropicClient creates an Anthropic-backed oracle from configuration.
// The API key falls back to ANTHROPIC_API_KEY when not configured.
func NewAnthropicClient(cfg config.OracleConfig) (*AnthropicClient, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return nil, errors.New(errors.ErrCodeOracleUnavailable, errors.StageAnalysis,
			"no API key: set oracle.api_key or ANTHROPIC_API_KEY")
	}

	return &AnthropicClient{
		inner:       anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:       anthropic.Model(cfg.Model),
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}, nil
}

// Name implements Client.
func (c *AnthropicClient) Name() string { return "anthropic" }

// Generate implements Client.
func (c *AnthropicClient) Generate(ctx context.Context, req *Request) (*Response, error) {
	start := time.Now()

	temperature := req.Temperature
	if temperature == 0 {
		temperature = c.temperature
	}
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = c.maxTokens
	}

	params := anthropic.MessageNewParams{
		Model:       c.model,
		MaxTokens:   int64(maxTokens),
		Temperature: anthropic.Float(temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}
	if req.SystemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.SystemPrompt}}
	}

	resp, err := c.inner.Messages.New(ctx, params)
	if err != nil {
		return nil, errors.NewOracleUnavailable(err)
	}

	var content string
	for _, block := range resp.Content {
		if text, ok := block.AsAny().(anthropic.TextBlock); ok {
			content += text.Text
		}
	}
	if content == "" {
		return nil, errors.New(errors.ErrCodeOracleEmpty, errors.StageAnalysis,
			fmt.Sprintf("model %s returned no text content", resp.Model))
	}

	return &Response{
		Content:      content,
		Model:        string(resp.Model),
		InputTokens:  int(resp.Usage.InputTokens),
		OutputTokens: int(resp.Usage.OutputTokens),
		Latency:      time.Since(start),
	}, nil
}

// New constructs the configured oracle backend.
func New(cfg config.OracleConfig) (Client, error) {
	switch cfg.Provider {
	case "", "anthropic":
		return NewAnthropicClient(cfg)
	default:
		return nil, errors.New(errors.ErrCodeConfigInvalid, errors.StageAnalysis,
			fmt.Sprintf("unknown oracle provider %q", cfg.Provider))
	}
}
