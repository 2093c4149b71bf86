package interview

import (
	"math/rand/v2"
)

// EncouragementKind selects the phrase that precedes the next question.
type EncouragementKind string

const (
	KindRephrase EncouragementKind = "rephrase"
	KindMoveOn   EncouragementKind = "move_on"
	KindEmpty    EncouragementKind = "empty"
	KindAdequate EncouragementKind = "adequate"
)

// IntroductionMarker is recorded in the asked questions for the opening prompt.
const IntroductionMarker = "introduction"

const (
	excellentScore = 8
	goodScore      = 5
)

// Content provides the fixed texts of an interview. Implementations must be
// safe for concurrent use.
type Content interface {
	OpeningQuestion() string
	Encouragement(kind EncouragementKind, score int) string
}

var phrases = map[string][]string{
	"rephrase": {
		"Let me put that another way.",
		"Let me ask that differently.",
		"Here is a simpler version of the question.",
		"Let me make that clearer.",
		"Allow me to clarify.",
	},
	"move_on": {
		"That's okay! Let's move on.",
		"No problem, here's the next one.",
		"All good! Let's try something else.",
		"That's fine, moving forward.",
		"No worries, here's another question.",
	},
	"empty": {
		"No worries! Let's try another.",
		"That's fine, next question.",
		"All good! Here's a different one.",
		"No problem, let's continue.",
		"That's okay, moving on.",
	},
	"excellent": {
		"Excellent!",
		"Fantastic answer!",
		"Impressive, thank you!",
		"Brilliant, that's really insightful.",
	},
	"good": {
		"Great, thanks for sharing.",
		"That's really helpful!",
		"Good example, thank you.",
		"Nice, that makes sense.",
	},
	"got_it": {
		"Got it, thanks.",
		"Understood.",
		"Okay, thank you.",
		"Thanks for that.",
	},
}

// DefaultContent serves built-in English phrases, picking one at random.
type DefaultContent struct {
	// pick returns an index in [0, n). Defaults to rand.IntN.
	pick func(n int) int
}

func NewDefaultContent() *DefaultContent {
	return &DefaultContent{pick: rand.IntN}
}

func (c *DefaultContent) OpeningQuestion() string {
	return "Let's begin the interview. Could you please introduce yourself and tell me about your background?"
}

func (c *DefaultContent) Encouragement(kind EncouragementKind, score int) string {
	key := string(kind)
	if kind == KindAdequate {
		key = adequacyBand(score)
	}

	options, ok := phrases[key]
	if !ok || len(options) == 0 {
		return "Great!"
	}

	pick := c.pick
	if pick == nil {
		pick = rand.IntN
	}
	return options[pick(len(options))]
}

func adequacyBand(score int) string {
	switch {
	case score >= excellentScore:
		return "excellent"
	case score >= goodScore:
		return "good"
	default:
		return "got_it"
	}
}
