package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/spigell/hh-interviewer/internal/ai"
	"github.com/spigell/hh-interviewer/internal/utils"
)

const (
	defaultMaxLogLength = 200
	defaultReason       = "No reason"
	maxScore            = 10
	parseAttempts       = 3
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// Interviewer implements ai.Assistant on top of a Gemini content generator.
type Interviewer struct {
	generator contentGenerator
	policy    Policy
	logger    *zap.Logger
	maxLogLen int
	// attempts bounds how often an unparseable reply is asked for again.
	attempts int
	wait     func(ctx context.Context, d time.Duration) error
}

var _ ai.Assistant = (*Interviewer)(nil)

func NewInterviewer(generator contentGenerator, policy Policy, maxLogLength int, logger *zap.Logger) *Interviewer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if policy == "" {
		policy = PolicyBalanced
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Interviewer{
		generator: generator,
		policy:    policy,
		logger:    logger,
		maxLogLen: maxLogLength,
		attempts:  parseAttempts,
		wait:      utils.WaitFor,
	}
}

func (i *Interviewer) Evaluate(ctx context.Context, question, answer, jobDescription, resume string) (*ai.Evaluation, error) {
	prompt := buildEvaluationPrompt(i.policy, question, answer, jobDescription, resume)

	var evaluation *ai.Evaluation
	err := i.generateDecoded(ctx, "evaluate", prompt, func(raw string) error {
		var err error
		evaluation, err = parseEvaluation(raw)
		return err
	})
	if err != nil {
		return nil, &ai.EvaluationError{Err: err}
	}

	i.logger.Debug("answer evaluated",
		zap.String("policy", string(i.policy)),
		zap.Bool("adequate", evaluation.Adequate),
		zap.Int("score", evaluation.Score),
	)

	return evaluation, nil
}

func (i *Interviewer) Rephrase(ctx context.Context, question string) (string, error) {
	var rephrased string
	err := i.generateDecoded(ctx, "rephrase", buildRephrasePrompt(question), func(raw string) error {
		var payload struct {
			RephrasedQuestion string `mapstructure:"rephrased_question"`
			Question          string `mapstructure:"question"`
		}
		if err := decodePayload(raw, &payload); err != nil {
			return err
		}

		rephrased = strings.TrimSpace(payload.RephrasedQuestion)
		if rephrased == "" {
			rephrased = strings.TrimSpace(payload.Question)
		}
		if rephrased == "" {
			return errors.New("response has no rephrased_question")
		}
		return nil
	})
	if err != nil {
		return "", &ai.GenerationError{Op: ai.OpRephrase, Err: err}
	}

	return rephrased, nil
}

func (i *Interviewer) GenerateQuestion(ctx context.Context, req ai.QuestionRequest) (*ai.GeneratedQuestion, error) {
	var generated *ai.GeneratedQuestion
	err := i.generateDecoded(ctx, "question", buildQuestionPrompt(req), func(raw string) error {
		var payload struct {
			Question       string `mapstructure:"question"`
			Acknowledgment string `mapstructure:"acknowledgment"`
		}
		if err := decodePayload(raw, &payload); err != nil {
			return err
		}

		question := strings.TrimSpace(payload.Question)
		if question == "" {
			return errors.New("response has no question")
		}

		generated = &ai.GeneratedQuestion{
			Question:       question,
			Acknowledgment: strings.TrimSpace(payload.Acknowledgment),
		}
		return nil
	})
	if err != nil {
		return nil, &ai.GenerationError{Op: ai.OpQuestion, Err: err}
	}

	return generated, nil
}

// generateDecoded asks the model again, with backoff, until decode accepts the
// reply. Transport errors are returned as is since the generator already
// retried them.
func (i *Interviewer) generateDecoded(ctx context.Context, kind, prompt string, decode func(raw string) error) error {
	var lastErr error
	for attempt := 1; attempt <= i.attempts; attempt++ {
		if attempt > 1 {
			delay := baseRetryDelay << (attempt - 2)
			i.logger.Warn("retrying unparseable gemini reply",
				zap.String("kind", kind),
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
				zap.Error(lastErr),
			)
			if err := i.wait(ctx, delay); err != nil {
				return fmt.Errorf("waiting for retry: %w (last error: %v)", err, lastErr)
			}
		}

		raw, err := i.generate(ctx, kind, prompt)
		if err != nil {
			return err
		}

		if lastErr = decode(raw); lastErr == nil {
			return nil
		}
	}

	return lastErr
}

func (i *Interviewer) generate(ctx context.Context, kind, prompt string) (string, error) {
	i.logger.Debug("gemini generate content request",
		zap.String("kind", kind),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, i.maxLogLen)),
	)

	raw, err := i.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return "", err
	}

	i.logger.Debug("gemini generate content response",
		zap.String("kind", kind),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, i.maxLogLen)),
	)

	return raw, nil
}

// parseEvaluation reads the evaluator reply. Missing or unreadable adequacy
// defaults to true and a missing score to 0 so a sloppy reply never stalls
// the interview.
func parseEvaluation(raw string) (*ai.Evaluation, error) {
	data, err := decodeObject(raw)
	if err != nil {
		return nil, err
	}

	adequate := true
	if v, ok := firstPresent(data, "is_adequate", "adequate"); ok {
		if b, known := coerceBool(v); known {
			adequate = b
		}
	}

	score := math.NaN()
	for _, key := range []string{"score", "score_out_of_10"} {
		if s := coerceFloat(data[key]); !math.IsNaN(s) && s != 0 {
			score = s
			break
		}
	}

	reason := coerceString(data["reason"])
	if reason == "" {
		reason = coerceString(data["evaluation_reason"])
	}
	if reason == "" {
		reason = defaultReason
	}

	return &ai.Evaluation{
		Adequate: adequate,
		Score:    clampScore(score),
		Reason:   reason,
		Raw:      raw,
	}, nil
}

func decodePayload(raw string, target any) error {
	data, err := decodeObject(raw)
	if err != nil {
		return err
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           target,
	})
	if err != nil {
		return fmt.Errorf("build decoder: %w", err)
	}

	if err := decoder.Decode(data); err != nil {
		return fmt.Errorf("decode gemini response: %w", err)
	}

	return nil
}

func decodeObject(raw string) (map[string]any, error) {
	var data map[string]any
	if err := json.Unmarshal([]byte(extractJSON(raw)), &data); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}
	if data == nil {
		return nil, errors.New("parse gemini response: not a json object")
	}
	return data, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.TrimSpace(strings.Trim(raw, "`"))

	// Tolerate chatter around the object.
	if !strings.HasPrefix(raw, "{") {
		start := strings.Index(raw, "{")
		end := strings.LastIndex(raw, "}")
		if start != -1 && end > start {
			raw = raw[start : end+1]
		}
	}
	return raw
}

func firstPresent(data map[string]any, keys ...string) (any, bool) {
	for _, key := range keys {
		if v, ok := data[key]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func clampScore(score float64) int {
	if math.IsNaN(score) || score < 0 {
		return 0
	}
	if score > maxScore {
		return maxScore
	}
	return int(math.Round(score))
}

// coerceBool reports false for ok when v does not read as a boolean.
func coerceBool(v any) (value, ok bool) {
	switch val := v.(type) {
	case bool:
		return val, true
	case float64:
		return val != 0, true
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "true", "yes", "y", "1":
			return true, true
		case "false", "no", "n", "0":
			return false, true
		}
	}
	return false, false
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case string:
		trimmed := strings.TrimSuffix(strings.TrimSpace(val), "/10")
		if trimmed == "" {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(trimmed), 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case nil:
		return ""
	default:
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}
