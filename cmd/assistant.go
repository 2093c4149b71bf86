package cmd

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/hh-interviewer/internal/ai"
	"github.com/spigell/hh-interviewer/internal/ai/gemini"
	"github.com/spigell/hh-interviewer/internal/documents"
	"github.com/spigell/hh-interviewer/internal/headhunter"
	"github.com/spigell/hh-interviewer/internal/interview"
	"github.com/spigell/hh-interviewer/internal/logger"
	"github.com/spigell/hh-interviewer/internal/secrets"
)

func newAssistant(ctx context.Context, cfg *AIConfig, log *zap.Logger) (ai.Assistant, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	policy, err := gemini.ParsePolicy(cfg.EvaluationPolicy)
	if err != nil {
		return nil, err
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		File:  cfg.Gemini.APIKeyFile,
		Value: cfg.Gemini.APIKey,
		Env:   "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file, GEMINI_API_KEY_FILE or GEMINI_API_KEY)", err)
	}

	aiLogger := logger.WithProvider(log, "gemini", cfg.Gemini.Model)

	generator, err := gemini.NewGenerator(ctx, gemini.Options{
		APIKey:          apiKey,
		Model:           cfg.Gemini.Model,
		MaxRetries:      cfg.Gemini.MaxRetries,
		Temperature:     cfg.Gemini.Temperature,
		MaxOutputTokens: cfg.Gemini.MaxOutputTokens,
	}, aiLogger.With(zap.Int("ai_retry_attempts", cfg.Gemini.MaxRetries)))
	if err != nil {
		return nil, err
	}

	return gemini.NewInterviewer(generator, policy, cfg.Gemini.MaxLogLength, aiLogger.With(zap.String("policy", string(policy)))), nil
}

func newService(ctx context.Context, cfg *Config, log *zap.Logger) (*interview.Service, error) {
	assistant, err := newAssistant(ctx, cfg.AI, log)
	if err != nil {
		return nil, fmt.Errorf("building ai assistant: %w", err)
	}

	registry := interview.NewRegistry(interview.Deps{
		Assistant:   assistant,
		Content:     interview.NewDefaultContent(),
		Logger:      log.Named("interview"),
		TurnTimeout: cfg.AI.TurnTimeout,
	})

	return interview.NewService(registry), nil
}

func buildSchedule(steps []ScheduleConfig) (interview.Schedule, error) {
	converted := make([]interview.ScheduleStep, 0, len(steps))
	for _, step := range steps {
		converted = append(converted, interview.ScheduleStep{
			Round:    ai.Round(step.Round),
			Duration: step.Duration,
		})
	}
	return interview.NewSchedule(converted)
}

// loadDocuments resolves the job description and resume, preferring hh.ru
// sources over local files when configured.
func loadDocuments(ctx context.Context, cfg *InterviewConfig, log *zap.Logger) (string, string, error) {
	hh := cfg.HeadHunter

	var token string
	if strings.TrimSpace(hh.ResumeID) != "" {
		var err error
		token, err = secrets.Load(secrets.Source{
			Name: "headhunter token",
			File: hh.TokenFile,
		})
		if err != nil {
			return "", "", fmt.Errorf("%w (set interview.headhunter.token-file or HH_TOKEN_FILE)", err)
		}
	}
	client := headhunter.New(log.Named("headhunter"), token)

	var jobDescription string
	var err error
	if strings.TrimSpace(hh.Vacancy) != "" {
		jobDescription, err = client.JobDescription(ctx, hh.Vacancy)
	} else {
		jobDescription, err = documents.Load(cfg.JobDescriptionFile)
	}
	if err != nil {
		return "", "", fmt.Errorf("loading job description: %w", err)
	}

	var resume string
	if strings.TrimSpace(hh.ResumeID) != "" {
		var r *headhunter.Resume
		r, err = client.GetResume(ctx, hh.ResumeID)
		if err == nil {
			resume = r.Text()
		}
	} else {
		resume, err = documents.Load(cfg.ResumeFile)
	}
	if err != nil {
		return "", "", fmt.Errorf("loading resume: %w", err)
	}

	return jobDescription, resume, nil
}
