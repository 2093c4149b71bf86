package interview

import (
	"time"

	"github.com/spigell/hh-interviewer/internal/ai"
)

// Action tells the caller which branch a turn took.
type Action string

const (
	ActionStartInterview      Action = "start_interview"
	ActionEmptyResponse       Action = "empty_response"
	ActionInadequateFirstTime Action = "inadequate_first_time"
	ActionAdequateResponse    Action = "adequate_response"
	ActionInadequateMoveOn    Action = "inadequate_move_on"
)

const (
	reasonStarted = "Interview started"
	reasonEmpty   = "Empty response"
)

// Session is the mutable state of one interview.
type Session struct {
	JobDescription string
	Resume         string

	CurrentQuestion string
	CurrentRound    ai.Round
	// IsRephrased is set while the current question is a rephrase of the previous one.
	IsRephrased    bool
	TotalScore     int
	QuestionCount  int
	AskedQuestions []string
	StartedAt      time.Time
}

// TurnResult is what the candidate sees after submitting an answer.
type TurnResult struct {
	IsInadequate     bool     `json:"is_inadequate"`
	ScoreOutOf10     int      `json:"score_out_of_10"`
	EvaluationReason string   `json:"evaluation_reason"`
	Question         string   `json:"question"`
	IsRephrased      bool     `json:"is_rephrased"`
	Action           Action   `json:"action"`
	Round            ai.Round `json:"round"`
}

type Summary struct {
	TotalScore    int      `json:"total_score"`
	QuestionCount int      `json:"question_count"`
	CurrentRound  ai.Round `json:"current_round"`
}

// AverageScore is the mean score per advanced question.
func (s Summary) AverageScore() float64 {
	return float64(s.TotalScore) / float64(max(s.QuestionCount, 1))
}
