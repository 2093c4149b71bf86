package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/spigell/hh-interviewer/internal/utils"
)

const (
	defaultModel           = "gemini-2.0-flash"
	defaultMaxRetries      = 3
	defaultTemperature     = 0.6
	defaultMaxOutputTokens = 400
	baseRetryDelay         = time.Second
)

var errEmptyResponse = errors.New("gemini api returned empty response")

type contentModels interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Options configures a Generator. Zero values fall back to defaults.
type Options struct {
	APIKey string
	Model  string
	// MaxRetries is the total number of attempts per prompt.
	MaxRetries      int
	Temperature     float32
	MaxOutputTokens int32
}

// Generator sends single-shot prompts to Gemini with a bounded retry loop.
type Generator struct {
	models          contentModels
	model           string
	maxRetries      int
	temperature     float32
	maxOutputTokens int32
	logger          *zap.Logger
	wait            func(ctx context.Context, d time.Duration) error
}

// NewGenerator creates a new Generator configured for the Gemini API backend.
func NewGenerator(ctx context.Context, opts Options, logger *zap.Logger) (*Generator, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return newGenerator(client.Models, opts, logger), nil
}

func newGenerator(models contentModels, opts Options, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}

	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultModel
	}

	retries := opts.MaxRetries
	if retries <= 0 {
		retries = defaultMaxRetries
	}

	temperature := opts.Temperature
	if temperature <= 0 {
		temperature = defaultTemperature
	}

	maxTokens := opts.MaxOutputTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxOutputTokens
	}

	return &Generator{
		models:          models,
		model:           model,
		maxRetries:      retries,
		temperature:     temperature,
		maxOutputTokens: maxTokens,
		logger:          logger,
		wait:            utils.WaitFor,
	}
}

// GenerateContent sends the prompt to Gemini and returns the textual response.
// Temporary failures are retried with exponential backoff.
func (g *Generator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	if g == nil || g.models == nil {
		return "", errors.New("gemini generator is not initialized")
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	var lastErr error
	for attempt := 1; attempt <= g.maxRetries; attempt++ {
		if attempt > 1 {
			delay := baseRetryDelay << (attempt - 2)
			g.logger.Warn("retrying gemini request",
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
				zap.Error(lastErr),
			)
			if err := g.wait(ctx, delay); err != nil {
				return "", fmt.Errorf("waiting for retry: %w (last error: %v)", err, lastErr)
			}
		}

		output, err := g.generateOnce(ctx, prompt)
		if err == nil {
			return output, nil
		}

		lastErr = err
		if !isRetryable(err) {
			break
		}
	}

	return "", lastErr
}

func (g *Generator) generateOnce(ctx context.Context, prompt string) (string, error) {
	temperature := g.temperature
	config := &genai.GenerateContentConfig{
		Temperature:      &temperature,
		MaxOutputTokens:  g.maxOutputTokens,
		ResponseMIMEType: "application/json",
	}

	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	if resp == nil {
		return "", errEmptyResponse
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	output := strings.TrimSpace(builder.String())
	if output == "" {
		return "", errEmptyResponse
	}

	return output, nil
}

func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		default:
			return false
		}
	}

	// Transport failures and empty replies.
	return true
}

func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.model
}
