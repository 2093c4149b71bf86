package documents

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

var ErrNoText = errors.New("no text content found")

// Load reads a job description or resume. PDF files are converted to plain
// text page by page, any other file is read as text.
func Load(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", errors.New("document path is empty")
	}

	var (
		text string
		err  error
	)
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		text, err = extractPDF(path)
	} else {
		text, err = readText(path)
	}
	if err != nil {
		return "", fmt.Errorf("load %s: %w", path, err)
	}

	text = Clean(text)
	if text == "" {
		return "", fmt.Errorf("load %s: %w", path, ErrNoText)
	}

	return text, nil
}

// Clean trims every line and drops the blank ones.
func Clean(text string) string {
	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}

func readText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func extractPDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		// Pages that fail to decode are skipped.
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}

		b.WriteString(text)
		b.WriteString("\n\n")
	}

	return b.String(), nil
}
