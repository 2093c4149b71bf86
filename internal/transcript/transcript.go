package transcript

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spigell/hh-interviewer/internal/ai"
	"github.com/spigell/hh-interviewer/internal/interview"
)

// SkippedAnswer is recorded for a question the candidate skipped.
const SkippedAnswer = "[Skipped]"

// Entry is one asked question together with the answer given to it.
type Entry struct {
	Question         string           `json:"question"`
	Answer           string           `json:"answer"`
	ScoreOutOf10     int              `json:"score_out_of_10"`
	Round            ai.Round         `json:"round"`
	IsRephrased      bool             `json:"is_rephrased"`
	IsInadequate     bool             `json:"is_inadequate"`
	Action           interview.Action `json:"action"`
	EvaluationReason string           `json:"evaluation_reason"`
	Timestamp        time.Time        `json:"timestamp"`
}

// Export is the document written when an interview ends.
type Export struct {
	SessionID           string             `json:"session_id"`
	JobDescription      string             `json:"job_description"`
	Resume              string             `json:"resume"`
	InterviewStart      *time.Time         `json:"interview_start"`
	InterviewEnd        time.Time          `json:"interview_end"`
	ConversationHistory []Entry            `json:"conversation_history"`
	Summary             *interview.Summary `json:"summary,omitempty"`
}

// Transcript collects the conversation of one session. It is safe for
// concurrent use.
type Transcript struct {
	sessionID      string
	jobDescription string
	resume         string

	mu      sync.Mutex
	entries []Entry
	now     func() time.Time
}

func New(sessionID, jobDescription, resume string) *Transcript {
	return &Transcript{
		sessionID:      sessionID,
		jobDescription: jobDescription,
		resume:         resume,
		now:            time.Now,
	}
}

// Record appends the question carried by result. The evaluation of the answer
// to it is filled in later by Answered or Skipped.
func (t *Transcript) Record(result *interview.TurnResult) {
	if result == nil {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.record(result)
}

// Answered attaches answer and its evaluation to the last question, then
// records the next question from result.
func (t *Transcript) Answered(answer string, result *interview.TurnResult) {
	if result == nil {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if last := t.last(); last != nil {
		last.Answer = answer
		last.ScoreOutOf10 = result.ScoreOutOf10
		last.IsInadequate = result.IsInadequate
		last.EvaluationReason = result.EvaluationReason
	}
	t.record(result)
}

// Skipped marks the last question as skipped and records the next one.
func (t *Transcript) Skipped(result *interview.TurnResult) {
	if result == nil {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if last := t.last(); last != nil {
		last.Answer = SkippedAnswer
		last.ScoreOutOf10 = 0
	}
	t.record(result)
}

func (t *Transcript) Entries() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Export builds the final document. summary may be nil.
func (t *Transcript) Export(summary *interview.Summary) Export {
	t.mu.Lock()
	defer t.mu.Unlock()

	export := Export{
		SessionID:           t.sessionID,
		JobDescription:      t.jobDescription,
		Resume:              t.resume,
		InterviewEnd:        t.now(),
		ConversationHistory: make([]Entry, len(t.entries)),
		Summary:             summary,
	}
	copy(export.ConversationHistory, t.entries)

	if len(t.entries) > 0 {
		start := t.entries[0].Timestamp
		export.InterviewStart = &start
	}

	return export
}

// DumpToFile writes the export as indented JSON into dir and returns the
// file name. An empty dir means the system temp directory.
func (t *Transcript) DumpToFile(dir string, summary *interview.Summary) (string, error) {
	if dir == "" {
		dir = os.TempDir()
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create transcript dir: %w", err)
	}

	name := filepath.Join(dir, fmt.Sprintf("interview_%s.json", t.sessionID))
	file, err := os.Create(name)
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(t.Export(summary)); err != nil {
		return "", err
	}

	return file.Name(), nil
}

func (t *Transcript) record(result *interview.TurnResult) {
	t.entries = append(t.entries, Entry{
		Question:    result.Question,
		Round:       result.Round,
		IsRephrased: result.IsRephrased,
		Action:      result.Action,
		Timestamp:   t.now(),
	})
}

func (t *Transcript) last() *Entry {
	if len(t.entries) == 0 {
		return nil
	}
	return &t.entries[len(t.entries)-1]
}
