package ai

import (
	"context"
	"fmt"
	"strings"
)

// Round is a named phase of the interview that determines the question style.
type Round string

const (
	RoundHR                    Round = "HR"
	RoundResumeValidation      Round = "Resume Validation"
	RoundJDFitment             Round = "JD Fitment"
	RoundPersonalityAssessment Round = "Personality Assessment"
)

// Rounds lists every known round in the order they are usually run.
var Rounds = []Round{RoundHR, RoundResumeValidation, RoundJDFitment, RoundPersonalityAssessment}

// ParseRound resolves a round by its name. Matching ignores case and treats
// dashes and underscores as spaces, so "jd-fitment" resolves to RoundJDFitment.
func ParseRound(s string) (Round, error) {
	normalized := strings.NewReplacer("-", " ", "_", " ").Replace(strings.TrimSpace(s))
	for _, r := range Rounds {
		if strings.EqualFold(string(r), normalized) {
			return r, nil
		}
	}

	return "", fmt.Errorf("unknown interview round: %q", s)
}

// Evaluation is the assessment of a single candidate answer.
type Evaluation struct {
	Adequate bool
	Score    int
	Reason   string
	Raw      string
}

// QuestionRequest carries the context used to generate a fresh question.
type QuestionRequest struct {
	Round          Round
	JobDescription string
	Resume         string
	AskedQuestions []string
}

type GeneratedQuestion struct {
	Question       string
	Acknowledgment string
}

type Evaluator interface {
	Evaluate(ctx context.Context, question, answer, jobDescription, resume string) (*Evaluation, error)
}

type Rephraser interface {
	Rephrase(ctx context.Context, question string) (string, error)
}

type QuestionGenerator interface {
	GenerateQuestion(ctx context.Context, req QuestionRequest) (*GeneratedQuestion, error)
}

// Assistant is the full language model capability consumed by an interview.
type Assistant interface {
	Evaluator
	Rephraser
	QuestionGenerator
}
