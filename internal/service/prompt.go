package service

import (
	"fmt"
	"strings"

	"github.com/jharjadi/jdgen/internal/leveling"
	"github.com/jharjadi/jdgen/internal/model"
)

// Field bounds for prompt inputs.
const (
	MaxTitleBytes       = 200
	MaxDepartmentBytes  = 200
	MaxRequirementBytes = 1000
	MaxRequirements     = 30
)

// GenerationSystemPrompt instructs the LLM when drafting a new job description.
const GenerationSystemPrompt = `You are an experienced recruiter writing job descriptions.
Rules:
1) Use the reference examples for tone, structure and typical responsibilities only. Do NOT copy company names, benefits or salary figures from them.
2) Include every requirement the hiring manager listed.
3) Structure the answer as: an introduction paragraph, "Responsibilities:", "Requirements:", "Nice to have:".
4) When a bullet is adapted from a reference example, cite it like [example:<EXAMPLE_ID>].
5) If leveling guidance is provided, match scope, autonomy and wording to that level.`

// LevelingSystemPrompt instructs the LLM when adjusting an existing job
// description to a target level.
const LevelingSystemPrompt = `You are an expert in job architecture and leveling.
Rules:
1) Rewrite the job description so its scope, autonomy, impact and experience requirements match the target level.
2) Follow the leveling guides provided. The first guide describes the target level; later guides are neighbouring levels or general guidance.
3) Keep the role's domain, title family and concrete skills unless they contradict the target level.
4) Return only the rewritten job description.`

// FormatExamples renders retrieved chunks as reference examples, one string
// per chunk:
//
//	ExampleID: <chunk_id>
//	Heading: <heading>
//	Department: <department>
//	Text: <content>
func FormatExamples(chunks []model.Chunk) []string {
	out := make([]string, len(chunks))
	for i, c := range chunks {
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("ExampleID: %s\n", c.ID))
		if c.Heading != "" {
			sb.WriteString(fmt.Sprintf("Heading: %s\n", c.Heading))
		}
		if c.Department != "" {
			sb.WriteString(fmt.Sprintf("Department: %s\n", c.Department))
		}
		sb.WriteString(fmt.Sprintf("Text: %s\n", c.Content))
		out[i] = sb.String()
	}
	return out
}

// BuildGenerationPrompt renders the user message for drafting a job
// description. Title and department must be non-empty, as must every
// requirement.
func BuildGenerationPrompt(title, department string, requirements, retrievedExamples []string) (string, error) {
	t, err := model.NewBoundedText("title", title, MaxTitleBytes)
	if err != nil {
		return "", err
	}
	d, err := model.NewBoundedText("department", department, MaxDepartmentBytes)
	if err != nil {
		return "", err
	}
	if len(requirements) > MaxRequirements {
		return "", &model.ValidationError{
			Field:  "requirements",
			Reason: fmt.Sprintf("at most %d requirements allowed", MaxRequirements),
		}
	}
	reqs, err := model.NewBoundedList("requirements", requirements, MaxRequirementBytes)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("Write a job description for the following role.\n\n")
	sb.WriteString(fmt.Sprintf("Title: %s\n", t))
	sb.WriteString(fmt.Sprintf("Department: %s\n", d))
	sb.WriteString("Requirements:\n")
	if len(reqs) == 0 {
		sb.WriteString("(none specified)\n")
	}
	for _, r := range reqs {
		sb.WriteString(fmt.Sprintf("- %s\n", r))
	}

	sb.WriteString("\nReference examples (most similar first):\n")
	if len(retrievedExamples) == 0 {
		sb.WriteString("(no similar job descriptions found)\n")
	}
	for i, ex := range retrievedExamples {
		if i > 0 {
			sb.WriteString("---\n")
		}
		sb.WriteString(ex)
		if !strings.HasSuffix(ex, "\n") {
			sb.WriteString("\n")
		}
	}
	return sb.String(), nil
}

// AppendLevelingGuidance adds assembled guide context for level to a
// generation prompt. An empty context leaves the prompt unchanged.
func AppendLevelingGuidance(prompt string, level leveling.Level, context string) string {
	if context == "" || level.IsZero() {
		return prompt
	}
	return fmt.Sprintf("%s\nLeveling guidance for %s:\n%s", prompt, level, context)
}

// BuildLevelingPrompt renders the user message for re-leveling a job
// description. context is the assembled guide text and may be empty.
func BuildLevelingPrompt(jobDescription string, targetLevel leveling.Level, context string) (string, error) {
	jd, err := model.NewBoundedText("job_description", jobDescription, model.MaxEmbedInputBytes)
	if err != nil {
		return "", err
	}
	if targetLevel.IsZero() {
		return "", &model.ValidationError{Field: "target_level", Reason: "must not be empty"}
	}

	track := targetLevel.Family().String() + " track"
	if targetLevel.IsExecutive() {
		track += ", executive"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Target level: %s (%s)\n\n", targetLevel, track))
	sb.WriteString("Leveling guides:\n")
	if context == "" {
		sb.WriteString("(no leveling guides available; rely on common industry practice)\n")
	} else {
		sb.WriteString(context)
		if !strings.HasSuffix(context, "\n") {
			sb.WriteString("\n")
		}
	}
	sb.WriteString("\nJob description:\n")
	sb.WriteString(jd.String())
	sb.WriteString("\n")
	return sb.String(), nil
}
