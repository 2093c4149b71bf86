package gemini

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/spigell/hh-interviewer/internal/ai"
)

var (
	//go:embed evaluate_balanced.md
	evaluateBalancedTemplate string
	//go:embed evaluate_strict.md
	evaluateStrictTemplate string
	//go:embed rephrase.md
	rephraseTemplate string
	//go:embed question.md
	questionTemplate string
)

// maxAskedInPrompt bounds how many previous questions are shown to the model.
const maxAskedInPrompt = 8

// Policy selects how strictly answers are judged.
type Policy string

const (
	PolicyBalanced Policy = "balanced"
	PolicyStrict   Policy = "strict"
)

func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyBalanced:
		return PolicyBalanced, nil
	case PolicyStrict:
		return PolicyStrict, nil
	default:
		return "", fmt.Errorf("unknown evaluation policy: %q", s)
	}
}

var roundInstructions = map[ai.Round]string{
	ai.RoundHR: `Ask a behavioral or situational question about one of:
- teamwork and collaboration
- conflict or working under pressure
- time management and priorities
- career goals and motivation
- explaining things to non-technical people
- preferred way of working
- leadership or mentoring

Do not ask technical questions and do not refer to the resume or job specifics.`,

	ai.RoundResumeValidation: `Ask about one specific item from the resume below, such as a project,
a tool they claim to know, their role in a past job, an achievement, or how
they learned a skill. Ask them to elaborate on it.

Resume: {{RESUME}}`,

	ai.RoundJDFitment: `Ask about a requirement of the job below: a technical skill it lists,
experience with its technologies, or how they would handle a situation
typical for this role.

Job description: {{JOB_DESCRIPTION}}`,

	ai.RoundPersonalityAssessment: `Ask about personality and values, for example how they take feedback,
their ideal work environment, staying motivated, learning style, handling
stress, team preferences or long-term goals. Do not ask about technical skills.`,
}

func render(template string, replacements map[string]string) string {
	pairs := make([]string, 0, len(replacements)*2)
	for key, value := range replacements {
		pairs = append(pairs, "{{"+key+"}}", value)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

func buildEvaluationPrompt(policy Policy, question, answer, jobDescription, resume string) string {
	template := evaluateBalancedTemplate
	if policy == PolicyStrict {
		template = evaluateStrictTemplate
	}

	return render(template, map[string]string{
		"QUESTION":        question,
		"ANSWER":          answer,
		"JOB_DESCRIPTION": jobDescription,
		"RESUME":          resume,
	})
}

func buildRephrasePrompt(question string) string {
	return render(rephraseTemplate, map[string]string{"QUESTION": question})
}

func buildQuestionPrompt(req ai.QuestionRequest) string {
	round := req.Round
	instructions, ok := roundInstructions[round]
	if !ok {
		round = ai.RoundHR
		instructions = roundInstructions[ai.RoundHR]
	}

	instructions = render(instructions, map[string]string{
		"JOB_DESCRIPTION": req.JobDescription,
		"RESUME":          req.Resume,
	})

	asked := req.AskedQuestions
	if len(asked) > maxAskedInPrompt {
		asked = asked[len(asked)-maxAskedInPrompt:]
	}

	list := "None yet"
	if len(asked) > 0 {
		lines := make([]string, 0, len(asked))
		for _, q := range asked {
			lines = append(lines, "- "+q)
		}
		list = strings.Join(lines, "\n")
	}

	return render(questionTemplate, map[string]string{
		"ROUND":              string(round),
		"ROUND_INSTRUCTIONS": instructions,
		"ASKED_QUESTIONS":    list,
	})
}
