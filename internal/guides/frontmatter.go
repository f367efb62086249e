package guides

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

type frontMatter struct {
	Title   string `yaml:"title"`
	Summary string `yaml:"summary"`
}

var errUnterminatedFrontMatter = errors.New("front matter not terminated")

// splitFrontMatter separates an optional leading YAML block delimited by
// "---" lines from the guide body. Text without a leading delimiter is
// returned unchanged.
func splitFrontMatter(text string) (frontMatter, string, error) {
	normalized := strings.ReplaceAll(text, "\r\n", "\n")
	if !strings.HasPrefix(normalized, "---\n") {
		return frontMatter{}, text, nil
	}
	rest := normalized[len("---\n"):]

	var header, body string
	switch {
	case strings.HasPrefix(rest, "---\n"):
		body = rest[len("---\n"):]
	case strings.HasSuffix(rest, "\n---"):
		header = strings.TrimSuffix(rest, "\n---")
	default:
		end := strings.Index(rest, "\n---\n")
		if end < 0 {
			return frontMatter{}, text, errUnterminatedFrontMatter
		}
		header, body = rest[:end], rest[end+len("\n---\n"):]
	}

	var fm frontMatter
	if err := yaml.Unmarshal([]byte(header), &fm); err != nil {
		return frontMatter{}, text, fmt.Errorf("parsing front matter: %w", err)
	}
	fm.Title = strings.TrimSpace(fm.Title)
	fm.Summary = strings.TrimSpace(fm.Summary)
	return fm, strings.TrimLeft(body, "\n"), nil
}
