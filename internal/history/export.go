package history

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/jharjadi/jdgen/internal/model"
)

const ruleWidth = 70

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

// FileStem returns the base file name used when exporting e, for example
// "12_senior_backend_engineer_job_description".
func FileStem(e Entry) string {
	slug := strings.Trim(slugRe.ReplaceAllString(strings.ToLower(e.Title), "_"), "_")
	if slug == "" {
		slug = "untitled"
	}
	suffix := "job_description"
	if e.Kind == KindLevel {
		suffix = "leveled_" + suffix
	}
	return fmt.Sprintf("%d_%s_%s", e.ID, slug, suffix)
}

// Export writes e to dir as <stem>.json and <stem>.txt and returns both paths.
func Export(dir string, e Entry) (string, string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("creating export directory: %w", err)
	}
	stem := filepath.Join(dir, FileStem(e))
	jsonPath, textPath := stem+".json", stem+".txt"

	if err := writeFile(jsonPath, func(w io.Writer) error { return WriteJSON(w, e) }); err != nil {
		return "", "", err
	}
	if err := writeFile(textPath, func(w io.Writer) error { return WriteText(w, e) }); err != nil {
		return "", "", err
	}
	return jsonPath, textPath, nil
}

func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := fn(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

// WriteJSON writes the entry as indented JSON.
func WriteJSON(w io.Writer, e Entry) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(e)
}

// WriteText writes the entry as a plain-text posting ready to copy.
func WriteText(w io.Writer, e Entry) error {
	var sb strings.Builder
	rule := strings.Repeat("=", ruleWidth)
	thin := strings.Repeat("-", ruleWidth)

	header := e.Title
	if e.Department != "" {
		header += " - " + e.Department
	}
	if e.TargetLevel != "" {
		header += " (" + e.TargetLevel + ")"
	}
	fmt.Fprintf(&sb, "%s\n%s\n\n", header, rule)

	switch e.Kind {
	case KindGenerate:
		var resp model.GenerateResponse
		if err := json.Unmarshal(e.Result, &resp); err != nil {
			return fmt.Errorf("decoding generate result: %w", err)
		}
		writeGenerate(&sb, &resp)
	case KindLevel:
		var resp model.LevelResponse
		if err := json.Unmarshal(e.Result, &resp); err != nil {
			return fmt.Errorf("decoding level result: %w", err)
		}
		if resp.LeveledJD != "" {
			sb.WriteString(strings.TrimSpace(resp.LeveledJD) + "\n")
		} else {
			sb.WriteString("Prompt:\n\n" + strings.TrimSpace(resp.Prompt) + "\n")
		}
		if len(resp.Guides) > 0 {
			fmt.Fprintf(&sb, "\nGuides: %s\n", strings.Join(resp.Guides, ", "))
		}
	default:
		return fmt.Errorf("unknown history kind %q", e.Kind)
	}

	fmt.Fprintf(&sb, "\n%s\nRecorded %s\n", thin, e.CreatedAt.Format("2006-01-02 15:04 MST"))
	_, err := io.WriteString(w, sb.String())
	return err
}

func writeGenerate(sb *strings.Builder, resp *model.GenerateResponse) {
	if resp.GeneratedJD != "" {
		sb.WriteString(strings.TrimSpace(resp.GeneratedJD) + "\n")
		return
	}
	if resp.Draft == nil {
		return
	}
	s := resp.Draft.Sections
	if intro := strings.TrimSpace(s.Intro); intro != "" {
		fmt.Fprintf(sb, "Job Description:\n%s\n\n", intro)
	}
	bullets(sb, "Key Responsibilities", s.Responsibilities)
	bullets(sb, "Requirements", s.Requirements)
	bullets(sb, "Nice to Have", s.NiceToHaves)
}

func bullets(sb *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	sb.WriteString(title + ":\n")
	for _, it := range items {
		fmt.Fprintf(sb, "• %s\n", it)
	}
	sb.WriteString("\n")
}
