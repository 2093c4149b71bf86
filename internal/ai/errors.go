package ai

import "fmt"

const (
	OpRephrase = "rephrase"
	OpQuestion = "question"
)

// EvaluationError reports that an answer could not be evaluated: the provider
// was unreachable or its reply could not be parsed after all retries.
type EvaluationError struct {
	Err error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("evaluate answer: %v", e.Err)
}

func (e *EvaluationError) Unwrap() error { return e.Err }

// GenerationError reports that a rephrase or a new question could not be produced.
type GenerationError struct {
	Op  string
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generate %s: %v", e.Op, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }
