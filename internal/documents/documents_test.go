package documents

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadText(t *testing.T) {
	path := writeFile(t, "jd.txt", "  Senior Go Engineer \n\n\n  Kubernetes, gRPC\n")

	text, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "Senior Go Engineer\nKubernetes, gRPC" {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load("  "); err == nil {
		t.Fatal("expected error for empty path")
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.txt")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not exist error, got %v", err)
	}

	blank := writeFile(t, "blank.md", " \n\t\n")
	if _, err := Load(blank); !errors.Is(err, ErrNoText) {
		t.Fatalf("expected ErrNoText, got %v", err)
	}

	broken := writeFile(t, "resume.PDF", "not a pdf")
	if _, err := Load(broken); err == nil {
		t.Fatal("expected error for invalid pdf")
	}
}
