package interview

import (
	"testing"
	"time"

	"github.com/spigell/hh-interviewer/internal/ai"
)

func TestScheduleRoundAt(t *testing.T) {
	schedule, err := NewSchedule([]ScheduleStep{
		{Round: "hr", Duration: 5 * time.Minute},
		{Round: "resume-validation", Duration: 10 * time.Minute},
		{Round: "JD Fitment", Duration: 0},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cases := []struct {
		elapsed time.Duration
		want    ai.Round
	}{
		{elapsed: 0, want: ai.RoundHR},
		{elapsed: 4 * time.Minute, want: ai.RoundHR},
		{elapsed: 5 * time.Minute, want: ai.RoundResumeValidation},
		{elapsed: 14*time.Minute + 59*time.Second, want: ai.RoundResumeValidation},
		{elapsed: 15 * time.Minute, want: ai.RoundJDFitment},
		{elapsed: 3 * time.Hour, want: ai.RoundJDFitment},
	}

	for _, tc := range cases {
		if got := schedule.RoundAt(tc.elapsed); got != tc.want {
			t.Fatalf("RoundAt(%s) = %s, want %s", tc.elapsed, got, tc.want)
		}
	}
}

func TestScheduleEmpty(t *testing.T) {
	if got := (Schedule{}).RoundAt(time.Hour); got != ai.RoundHR {
		t.Fatalf("expected HR for empty schedule, got %s", got)
	}
}

func TestNewScheduleErrors(t *testing.T) {
	cases := map[string][]ScheduleStep{
		"unknown round": {{Round: "coding", Duration: time.Minute}},
		"zero duration in the middle": {
			{Round: ai.RoundHR, Duration: 0},
			{Round: ai.RoundJDFitment, Duration: time.Minute},
		},
	}

	for name, steps := range cases {
		if _, err := NewSchedule(steps); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}
