package headhunter

import (
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
)

type Resume struct {
	ID        string   `mapstructure:"id"`
	Title     string   `mapstructure:"title"`
	FirstName string   `mapstructure:"first_name"`
	LastName  string   `mapstructure:"last_name"`
	About     string   `mapstructure:"skills"`
	SkillSet  []string `mapstructure:"skill_set"`
	// TotalExperience is in months.
	TotalExperience struct {
		Months int `mapstructure:"months"`
	} `mapstructure:"total_experience"`
	Experience []struct {
		Company     string `mapstructure:"company"`
		Position    string `mapstructure:"position"`
		Start       string `mapstructure:"start"`
		End         string `mapstructure:"end"`
		Description string `mapstructure:"description"`
	} `mapstructure:"experience"`
}

func decodeResume(raw map[string]any) (*Resume, error) {
	if raw == nil {
		return nil, fmt.Errorf("empty resume")
	}

	var resume Resume
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &resume,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("decode resume: %w", err)
	}

	return &resume, nil
}

// Text renders the resume as plain text for prompts.
func (r *Resume) Text() string {
	var b strings.Builder

	name := strings.TrimSpace(r.FirstName + " " + r.LastName)
	writeLine(&b, "Name", name)
	writeLine(&b, "Title", r.Title)
	if r.TotalExperience.Months > 0 {
		writeLine(&b, "Total experience", fmt.Sprintf("%d years %d months", r.TotalExperience.Months/12, r.TotalExperience.Months%12))
	}
	if len(r.SkillSet) > 0 {
		writeLine(&b, "Skills", strings.Join(r.SkillSet, ", "))
	}
	if about := HTMLToText(r.About); about != "" {
		b.WriteString("\n")
		b.WriteString(about)
		b.WriteString("\n")
	}

	for _, job := range r.Experience {
		end := job.End
		if end == "" {
			end = "now"
		}
		fmt.Fprintf(&b, "\n%s, %s (%s - %s)\n", job.Position, job.Company, job.Start, end)
		if description := HTMLToText(job.Description); description != "" {
			b.WriteString(description)
			b.WriteString("\n")
		}
	}

	return strings.TrimSpace(b.String())
}
