package interview

import (
	"fmt"
	"time"

	"github.com/spigell/hh-interviewer/internal/ai"
)

// ScheduleStep keeps the interview in Round for Duration.
type ScheduleStep struct {
	Round    ai.Round
	Duration time.Duration
}

// Schedule is a time based round policy. It is applied by callers; the
// controller never changes rounds on its own.
type Schedule struct {
	Steps []ScheduleStep
}

// NewSchedule normalizes round names and checks durations. Only the last step
// may omit its duration.
func NewSchedule(steps []ScheduleStep) (Schedule, error) {
	normalized := make([]ScheduleStep, 0, len(steps))
	for i, step := range steps {
		round, err := ai.ParseRound(string(step.Round))
		if err != nil {
			return Schedule{}, fmt.Errorf("schedule step %d: %w", i, err)
		}
		if step.Duration <= 0 && i != len(steps)-1 {
			return Schedule{}, fmt.Errorf("schedule step %d (%s): duration must be positive", i, round)
		}
		normalized = append(normalized, ScheduleStep{Round: round, Duration: step.Duration})
	}
	return Schedule{Steps: normalized}, nil
}

// RoundAt returns the round for the elapsed interview time. Once every step
// has elapsed the last round sticks. An empty schedule yields HR.
func (s Schedule) RoundAt(elapsed time.Duration) ai.Round {
	if len(s.Steps) == 0 {
		return ai.RoundHR
	}

	var end time.Duration
	for _, step := range s.Steps {
		end += step.Duration
		if elapsed < end {
			return step.Round
		}
	}

	return s.Steps[len(s.Steps)-1].Round
}
