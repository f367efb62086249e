package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/jharjadi/jdgen/internal/leveling"
	"github.com/jharjadi/jdgen/internal/model"
)

func TestFormatExamples_SingleChunk(t *testing.T) {
	chunks := []model.Chunk{{
		ID:         "abc-123",
		Heading:    "Data Engineer",
		Department: "Data",
		Content:    "Build pipelines.",
	}}

	result := FormatExamples(chunks)
	if len(result) != 1 {
		t.Fatalf("expected 1 example, got %d", len(result))
	}
	want := "ExampleID: abc-123\nHeading: Data Engineer\nDepartment: Data\nText: Build pipelines.\n"
	if result[0] != want {
		t.Errorf("got %q, want %q", result[0], want)
	}
}

func TestFormatExamples_OmitsEmptyMetadata(t *testing.T) {
	result := FormatExamples([]model.Chunk{{ID: "a", Content: "text"}})
	if strings.Contains(result[0], "Heading:") || strings.Contains(result[0], "Department:") {
		t.Errorf("empty heading/department should be omitted: %q", result[0])
	}
}

func TestFormatExamples_Empty(t *testing.T) {
	if got := FormatExamples(nil); len(got) != 0 {
		t.Errorf("expected no examples, got %d", len(got))
	}
}

func TestBuildGenerationPrompt(t *testing.T) {
	prompt, err := BuildGenerationPrompt("  Backend Engineer ", "Platform",
		[]string{"Go", "PostgreSQL"}, []string{"ExampleID: a\nText: A\n", "ExampleID: b\nText: B"})
	if err != nil {
		t.Fatalf("BuildGenerationPrompt: %v", err)
	}

	for _, want := range []string{
		"Title: Backend Engineer\n",
		"Department: Platform\n",
		"- Go\n",
		"- PostgreSQL\n",
		"ExampleID: a\nText: A\n---\nExampleID: b\nText: B\n",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestBuildGenerationPrompt_NoExamples(t *testing.T) {
	prompt, err := BuildGenerationPrompt("Designer", "Design", nil, nil)
	if err != nil {
		t.Fatalf("BuildGenerationPrompt: %v", err)
	}
	if !strings.Contains(prompt, "(none specified)") {
		t.Error("expected placeholder for empty requirements")
	}
	if !strings.Contains(prompt, "(no similar job descriptions found)") {
		t.Error("expected placeholder for empty examples")
	}
}

func TestBuildGenerationPrompt_Validation(t *testing.T) {
	tooMany := make([]string, MaxRequirements+1)
	for i := range tooMany {
		tooMany[i] = "req"
	}

	tests := []struct {
		name      string
		title     string
		dept      string
		reqs      []string
		wantField string
	}{
		{"empty title", "  ", "Eng", nil, "title"},
		{"long title", strings.Repeat("t", MaxTitleBytes+1), "Eng", nil, "title"},
		{"empty department", "Engineer", "", nil, "department"},
		{"blank requirement", "Engineer", "Eng", []string{"Go", " "}, "requirements[1]"},
		{"too many requirements", "Engineer", "Eng", tooMany, "requirements"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildGenerationPrompt(tt.title, tt.dept, tt.reqs, nil)
			if !errors.Is(err, model.ErrInvalidInput) {
				t.Fatalf("got %v, want ErrInvalidInput", err)
			}
			var ve *model.ValidationError
			if !errors.As(err, &ve) || ve.Field != tt.wantField {
				t.Errorf("field: got %+v, want %q", ve, tt.wantField)
			}
		})
	}
}

func TestAppendLevelingGuidance(t *testing.T) {
	lvl := leveling.MustParseLevel("uni4")

	if got := AppendLevelingGuidance("base", lvl, ""); got != "base" {
		t.Errorf("empty context should leave prompt unchanged, got %q", got)
	}
	if got := AppendLevelingGuidance("base", leveling.Level{}, "ctx"); got != "base" {
		t.Errorf("zero level should leave prompt unchanged, got %q", got)
	}
	got := AppendLevelingGuidance("base", lvl, "### Guide: uni4\nbody\n")
	if !strings.HasPrefix(got, "base\nLeveling guidance for uni4:\n") || !strings.HasSuffix(got, "body\n") {
		t.Errorf("unexpected guidance prompt %q", got)
	}
}

func TestBuildLevelingPrompt(t *testing.T) {
	prompt, err := BuildLevelingPrompt("We need a staff engineer.", leveling.MustParseLevel("svp"), "### Guide: svp\nLead the org.\n")
	if err != nil {
		t.Fatalf("BuildLevelingPrompt: %v", err)
	}
	for _, want := range []string{
		"Target level: svp (management track, executive)",
		"### Guide: svp\nLead the org.\n",
		"Job description:\nWe need a staff engineer.\n",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestBuildLevelingPrompt_TrackHeader(t *testing.T) {
	tests := []struct {
		level string
		want  string
	}{
		{"uni4", "Target level: uni4 (individual track)\n"},
		{"mgr5", "Target level: mgr5 (management track)\n"},
		{"vp", "Target level: vp (management track, executive)\n"},
	}
	for _, tt := range tests {
		prompt, err := BuildLevelingPrompt("JD", leveling.MustParseLevel(tt.level), "")
		if err != nil {
			t.Fatalf("BuildLevelingPrompt(%s): %v", tt.level, err)
		}
		if !strings.HasPrefix(prompt, tt.want) {
			t.Errorf("level %s: expected prefix %q, got %q", tt.level, tt.want, prompt)
		}
	}
}

func TestBuildLevelingPrompt_NoGuides(t *testing.T) {
	prompt, err := BuildLevelingPrompt("JD", leveling.MustParseLevel("uni2"), "")
	if err != nil {
		t.Fatalf("BuildLevelingPrompt: %v", err)
	}
	if !strings.Contains(prompt, "(individual track)") {
		t.Errorf("expected individual track, got:\n%s", prompt)
	}
	if !strings.Contains(prompt, "no leveling guides available") {
		t.Error("expected placeholder when no guides were assembled")
	}
}

func TestBuildLevelingPrompt_EmptyJobDescription(t *testing.T) {
	_, err := BuildLevelingPrompt(" \n\t", leveling.MustParseLevel("uni3"), "ctx")
	if !errors.Is(err, model.ErrInvalidInput) {
		t.Fatalf("got %v, want ErrInvalidInput", err)
	}
	var ve *model.ValidationError
	if !errors.As(err, &ve) || ve.Field != "job_description" {
		t.Errorf("expected error naming job_description, got %v", err)
	}
	if !strings.Contains(err.Error(), "job_description") {
		t.Errorf("error text should name the field: %q", err.Error())
	}
}

func TestBuildLevelingPrompt_OversizedJobDescription(t *testing.T) {
	jd := strings.Repeat("a", model.MaxEmbedInputBytes+1)
	_, err := BuildLevelingPrompt(jd, leveling.MustParseLevel("uni3"), "")
	if !errors.Is(err, model.ErrInvalidInput) {
		t.Fatalf("got %v, want ErrInvalidInput", err)
	}
}

func TestBuildLevelingPrompt_ZeroLevel(t *testing.T) {
	_, err := BuildLevelingPrompt("JD", leveling.Level{}, "")
	var ve *model.ValidationError
	if !errors.As(err, &ve) || ve.Field != "target_level" {
		t.Errorf("expected target_level validation error, got %v", err)
	}
}

func TestSystemPrompts_ContainRequiredElements(t *testing.T) {
	if !strings.Contains(GenerationSystemPrompt, "[example:<EXAMPLE_ID>]") {
		t.Error("generation prompt should mention citation format")
	}
	if !strings.Contains(LevelingSystemPrompt, "target level") {
		t.Error("leveling prompt should mention the target level")
	}
}
