package secrets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadPrefersFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key")
	if err := os.WriteFile(path, []byte("  from-file\n"), 0o600); err != nil {
		t.Fatalf("write key: %v", err)
	}

	got, err := Load(Source{Name: "gemini api key", File: path, Value: "inline"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "from-file" {
		t.Fatalf("expected file secret, got %q", got)
	}
}

func TestLoadEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key")
	if err := os.WriteFile(path, []byte("\n"), 0o600); err != nil {
		t.Fatalf("write key: %v", err)
	}

	_, err := Load(Source{Name: "gemini api key", File: path, Value: "inline"})
	if err == nil || !strings.Contains(err.Error(), "is empty") {
		t.Fatalf("expected empty file error, got %v", err)
	}
}

func TestLoadFallsBackToEnv(t *testing.T) {
	t.Setenv("HH_INTERVIEWER_TEST_KEY", " env-secret ")

	got, err := Load(Source{Env: "HH_INTERVIEWER_TEST_KEY"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "env-secret" {
		t.Fatalf("expected env secret, got %q", got)
	}

	got, err = Load(Source{Value: "inline", Env: "HH_INTERVIEWER_TEST_KEY"})
	if err != nil || got != "inline" {
		t.Fatalf("inline value must win over env, got %q (%v)", got, err)
	}
}

func TestLoadNotConfigured(t *testing.T) {
	t.Setenv("HH_INTERVIEWER_TEST_KEY", "")

	_, err := Load(Source{Name: "gemini api key", Env: "HH_INTERVIEWER_TEST_KEY"})
	if err == nil || !strings.Contains(err.Error(), "gemini api key is not configured") {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = Load(Source{})
	if err == nil || err.Error() != "secret is not configured" {
		t.Fatalf("unexpected error: %v", err)
	}
}
