package headhunter

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

type Vacancy struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
	Area struct {
		Name string `json:"name,omitempty"`
	} `json:"area,omitempty"`
	Experience struct {
		ID   string `json:"id,omitempty"`
		Name string `json:"name,omitempty"`
	} `json:"experience,omitempty"`
	Schedule struct {
		Name string `json:"name,omitempty"`
	} `json:"schedule,omitempty"`
	Employer struct {
		ID   string `json:"id,omitempty"`
		Name string `json:"name,omitempty"`
	} `json:"employer,omitempty"`
	AlternateURL string `json:"alternate_url,omitempty"`
	// Description is HTML.
	Description string `json:"description,omitempty"`
	KeySkills   []struct {
		Name string `json:"name,omitempty"`
	} `json:"key_skills,omitempty"`
	Archived bool `json:"archived,omitempty"`
}

// JobDescription renders the vacancy as plain text for prompts.
func (v *Vacancy) JobDescription() string {
	var b strings.Builder

	title := v.Name
	if v.Employer.Name != "" {
		title = fmt.Sprintf("%s at %s", v.Name, v.Employer.Name)
	}
	b.WriteString(title)
	b.WriteString("\n")

	writeLine(&b, "Location", v.Area.Name)
	writeLine(&b, "Experience", v.Experience.Name)
	writeLine(&b, "Schedule", v.Schedule.Name)

	if skills := v.Skills(); len(skills) > 0 {
		writeLine(&b, "Key skills", strings.Join(skills, ", "))
	}

	if text := HTMLToText(v.Description); text != "" {
		b.WriteString("\n")
		b.WriteString(text)
		b.WriteString("\n")
	}

	return strings.TrimSpace(b.String())
}

func (v *Vacancy) Skills() []string {
	skills := make([]string, 0, len(v.KeySkills))
	for _, skill := range v.KeySkills {
		if name := strings.TrimSpace(skill.Name); name != "" {
			skills = append(skills, name)
		}
	}
	return skills
}

// HTMLToText keeps the text nodes of an HTML fragment, one block per line.
func HTMLToText(fragment string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}

	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return strings.TrimSpace(fragment)
	}

	var lines []string
	var current strings.Builder
	flush := func() {
		if line := strings.Join(strings.Fields(current.String()), " "); line != "" {
			lines = append(lines, line)
		}
		current.Reset()
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			current.WriteString(n.Data)
			current.WriteString(" ")
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
		if n.Type == html.ElementNode && isBlock(n.Data) {
			flush()
		}
	}
	walk(doc)
	flush()

	return strings.Join(lines, "\n")
}

func isBlock(tag string) bool {
	switch tag {
	case "p", "li", "br", "div", "h1", "h2", "h3", "h4", "ul", "ol":
		return true
	default:
		return false
	}
}

func writeLine(b *strings.Builder, label, value string) {
	if value = strings.TrimSpace(value); value == "" {
		return
	}
	fmt.Fprintf(b, "%s: %s\n", label, value)
}
