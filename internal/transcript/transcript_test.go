package transcript

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spigell/hh-interviewer/internal/ai"
	"github.com/spigell/hh-interviewer/internal/interview"
)

func fixedClock(start time.Time) func() time.Time {
	current := start
	return func() time.Time {
		current = current.Add(time.Minute)
		return current
	}
}

func TestTranscriptConversation(t *testing.T) {
	tr := New("s1", "jd", "cv")
	tr.now = fixedClock(time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC))

	tr.Record(&interview.TurnResult{Question: "Introduce yourself.", Action: interview.ActionStartInterview, Round: ai.RoundHR})
	tr.Answered("I am a Go developer", &interview.TurnResult{
		ScoreOutOf10:     7,
		EvaluationReason: "clear",
		Question:         "Good. Next?",
		Action:           interview.ActionAdequateResponse,
		Round:            ai.RoundHR,
	})
	tr.Skipped(&interview.TurnResult{Question: "Another one?", Action: interview.ActionEmptyResponse, Round: ai.RoundHR})

	entries := tr.Entries()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}

	if entries[0].Answer != "I am a Go developer" || entries[0].ScoreOutOf10 != 7 || entries[0].EvaluationReason != "clear" {
		t.Fatalf("unexpected first entry %+v", entries[0])
	}
	if entries[1].Answer != SkippedAnswer || entries[1].ScoreOutOf10 != 0 {
		t.Fatalf("unexpected second entry %+v", entries[1])
	}
	if entries[2].Answer != "" || entries[2].Action != interview.ActionEmptyResponse {
		t.Fatalf("unexpected last entry %+v", entries[2])
	}
}

func TestTranscriptIgnoresNilResults(t *testing.T) {
	tr := New("s1", "jd", "cv")
	tr.Record(nil)
	tr.Answered("x", nil)
	tr.Skipped(nil)
	if len(tr.Entries()) != 0 {
		t.Fatal("nil results must not be recorded")
	}
}

func TestTranscriptDumpToFile(t *testing.T) {
	tr := New("abc", "jd", "cv")
	start := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	tr.now = fixedClock(start)
	tr.Record(&interview.TurnResult{Question: "Introduce yourself.", Action: interview.ActionStartInterview, Round: ai.RoundHR})

	dir := filepath.Join(t.TempDir(), "transcripts")
	summary := &interview.Summary{TotalScore: 0, QuestionCount: 0, CurrentRound: ai.RoundHR}

	name, err := tr.DumpToFile(dir, summary)
	if err != nil {
		t.Fatalf("dump: %v", err)
	}
	if filepath.Base(name) != "interview_abc.json" {
		t.Fatalf("unexpected file name %s", name)
	}

	data, err := os.ReadFile(name)
	if err != nil {
		t.Fatalf("read dump: %v", err)
	}

	var export Export
	if err := json.Unmarshal(data, &export); err != nil {
		t.Fatalf("decode dump: %v", err)
	}
	if export.SessionID != "abc" || export.JobDescription != "jd" || export.Resume != "cv" {
		t.Fatalf("unexpected export header %+v", export)
	}
	if export.InterviewStart == nil || !export.InterviewStart.Equal(start.Add(time.Minute)) {
		t.Fatalf("unexpected interview start %v", export.InterviewStart)
	}
	if len(export.ConversationHistory) != 1 || export.Summary == nil || export.Summary.CurrentRound != ai.RoundHR {
		t.Fatalf("unexpected export body %+v", export)
	}
}

func TestTranscriptExportEmpty(t *testing.T) {
	export := New("s1", "jd", "cv").Export(nil)
	if export.InterviewStart != nil {
		t.Fatal("empty transcript has no start time")
	}
	if export.ConversationHistory == nil || len(export.ConversationHistory) != 0 {
		t.Fatalf("expected empty history, got %v", export.ConversationHistory)
	}
}
