package interview

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/spigell/hh-interviewer/internal/ai"
)

type fakeAssistant struct {
	mu sync.Mutex

	evaluations []ai.Evaluation
	evalErr     error
	rephraseErr error
	questionErr error

	evaluateCalls int
	rephraseCalls int
	questionCalls int
	requests      []ai.QuestionRequest
	evaluated     []string
}

func (f *fakeAssistant) Evaluate(ctx context.Context, question, answer, _, _ string) (*ai.Evaluation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.evaluateCalls++
	f.evaluated = append(f.evaluated, question+"|"+answer)
	if f.evalErr != nil {
		return nil, &ai.EvaluationError{Err: f.evalErr}
	}
	if len(f.evaluations) == 0 {
		return nil, &ai.EvaluationError{Err: errors.New("no scripted evaluation")}
	}

	next := f.evaluations[0]
	f.evaluations = f.evaluations[1:]
	return &next, nil
}

func (f *fakeAssistant) Rephrase(_ context.Context, question string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.rephraseCalls++
	if f.rephraseErr != nil {
		return "", f.rephraseErr
	}
	return "Simpler: " + question, nil
}

func (f *fakeAssistant) GenerateQuestion(_ context.Context, req ai.QuestionRequest) (*ai.GeneratedQuestion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.questionCalls++
	f.requests = append(f.requests, req)
	if f.questionErr != nil {
		return nil, f.questionErr
	}
	return &ai.GeneratedQuestion{
		Question:       fmt.Sprintf("Question %d?", f.questionCalls),
		Acknowledgment: "Thanks!",
	}, nil
}

func (f *fakeAssistant) script(evaluations ...ai.Evaluation) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.evaluations = append(f.evaluations, evaluations...)
}

// staticContent returns predictable phrases so results can be compared verbatim.
type staticContent struct{}

func (staticContent) OpeningQuestion() string { return "Introduce yourself." }

func (staticContent) Encouragement(kind EncouragementKind, score int) string {
	if kind == KindAdequate {
		return fmt.Sprintf("[%s:%s]", kind, adequacyBand(score))
	}
	return fmt.Sprintf("[%s]", kind)
}

func inadequate(score int) ai.Evaluation {
	return ai.Evaluation{Adequate: false, Score: score, Reason: "vague"}
}

func adequate(score int) ai.Evaluation {
	return ai.Evaluation{Adequate: true, Score: score, Reason: "solid"}
}
