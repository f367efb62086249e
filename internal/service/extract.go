package service

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/jharjadi/jdgen/internal/model"
)

// Limits for the extraction draft.
const (
	draftMaxResponsibilities = 6
	draftMaxRequirements     = 8
	draftMaxNiceToHaves      = 4
	draftSectionSources      = 3
	draftIntroSources        = 2
)

// GenerationMethodExtraction marks drafts assembled from retrieved examples.
const GenerationMethodExtraction = "rag_extraction"

var (
	responsibilitiesHeader = regexp.MustCompile(`(?i)Responsibilities:\s*\n`)
	requirementsHeader     = regexp.MustCompile(`(?i)Requirements:\s*\n`)
	niceToHaveHeader       = regexp.MustCompile(`(?i)Nice to have:\s*\n`)

	responsibilitiesEnd = regexp.MustCompile(`(?i)\n\n[a-z]|\nRequirements:|\nNice to have:`)
	requirementsEnd     = regexp.MustCompile(`(?i)\n\n[a-z]|\nNice to have:|\nMinimum`)
	niceToHaveEnd       = regexp.MustCompile(`(?i)\n\n[a-z]|\nMinimum`)

	numberedBullet = regexp.MustCompile(`^[-•*\d+.\s]+`)
	plainBullet    = regexp.MustCompile(`^[-•*\s]+`)

	introStop     = regexp.MustCompile(`(?i)Responsibilities:`)
	sentenceSplit = regexp.MustCompile(`[.!?]+`)
	htmlEntity    = regexp.MustCompile(`&[a-zA-Z]+;`)
	introKeywords = []string{"looking", "seeking", "join", "team", "role", "position", "opportunity"}
)

// sectionBody returns the text between the first header match and the
// earliest terminator after it, trimmed. ok is false when there is no header.
func sectionBody(content string, header, end *regexp.Regexp) (string, bool) {
	loc := header.FindStringIndex(content)
	if loc == nil {
		return "", false
	}
	rest := content[loc[1]:]
	if e := end.FindStringIndex(rest); e != nil {
		rest = rest[:e[0]]
	}
	return strings.TrimSpace(rest), true
}

// sectionLines extracts bullet lines whose trimmed length lies strictly
// between minLen and maxLen runes, stripping leading markers with bullet.
func sectionLines(chunks []model.Chunk, header, end, bullet *regexp.Regexp, minLen, maxLen int) []string {
	var out []string
	for _, c := range chunks[:min(len(chunks), draftSectionSources)] {
		body, ok := sectionBody(c.Content, header, end)
		if !ok {
			continue
		}
		for _, line := range strings.Split(body, "\n") {
			line = strings.TrimSpace(line)
			n := utf8.RuneCountInString(line)
			if n <= minLen || n >= maxLen {
				continue
			}
			if cleaned := strings.TrimSpace(bullet.ReplaceAllString(line, "")); cleaned != "" {
				out = append(out, cleaned)
			}
		}
	}
	return out
}

// dedupFold keeps base as given and appends the items that repeat nothing
// seen so far, compared case-insensitively. The result is cut to limit.
func dedupFold(base, items []string, limit int) []string {
	seen := make(map[string]struct{}, len(base)+len(items))
	out := make([]string, 0, len(base)+len(items))
	for _, it := range base {
		seen[strings.ToLower(it)] = struct{}{}
		out = append(out, it)
	}
	for _, it := range items {
		key := strings.ToLower(it)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, it)
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// ExtractResponsibilities collects up to six responsibility lines from the
// top three examples.
func ExtractResponsibilities(chunks []model.Chunk) []string {
	lines := sectionLines(chunks, responsibilitiesHeader, responsibilitiesEnd, numberedBullet, 15, 200)
	return dedupFold(nil, lines, draftMaxResponsibilities)
}

// ExtractRequirements puts the caller's requirements first, then adds
// requirement lines from the top three examples, eight at most. With no
// examples the caller's list is returned as given.
func ExtractRequirements(chunks []model.Chunk, userRequirements []string) []string {
	if len(chunks) == 0 {
		return append([]string{}, userRequirements...)
	}
	lines := sectionLines(chunks, requirementsHeader, requirementsEnd, plainBullet, 10, 150)
	return dedupFold(userRequirements, lines, draftMaxRequirements)
}

// ExtractNiceToHaves collects up to four nice-to-have lines from the top
// three examples.
func ExtractNiceToHaves(chunks []model.Chunk) []string {
	lines := sectionLines(chunks, niceToHaveHeader, niceToHaveEnd, numberedBullet, 10, 120)
	return dedupFold(nil, lines, draftMaxNiceToHaves)
}

// ExtractIntro picks the first recruiting-style sentence from the text that
// precedes "Responsibilities:" in the top two examples, falling back to a
// templated sentence.
func ExtractIntro(chunks []model.Chunk, title, department string) string {
	if len(chunks) == 0 {
		return "We are seeking a talented " + title + " to join our " + department + " team."
	}
	for _, c := range chunks[:min(len(chunks), draftIntroSources)] {
		loc := introStop.FindStringIndex(c.Content)
		if loc == nil {
			continue
		}
		for _, sentence := range sentenceSplit.Split(strings.TrimSpace(c.Content[:loc[0]]), -1) {
			sentence = strings.TrimSpace(sentence)
			n := utf8.RuneCountInString(sentence)
			if n <= 30 || n >= 300 || !containsAny(strings.ToLower(sentence), introKeywords) {
				continue
			}
			return strings.TrimSpace(htmlEntity.ReplaceAllString(sentence, ""))
		}
	}
	return "We are seeking a talented " + title + " to join our " + department +
		" team. This is an excellent opportunity to make a significant impact in a dynamic environment."
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// BuildDraft assembles a job description from retrieved examples without an
// LLM by rearranging their sections.
func BuildDraft(title, department string, requirements []string, chunks []model.Chunk) *model.Draft {
	return &model.Draft{
		Title:      title,
		Department: department,
		Sections: model.DraftSections{
			Intro:            ExtractIntro(chunks, title, department),
			Responsibilities: ExtractResponsibilities(chunks),
			Requirements:     ExtractRequirements(chunks, requirements),
			NiceToHaves:      ExtractNiceToHaves(chunks),
		},
		Metadata: model.DraftMetadata{
			Generated:        true,
			SimilarJobsUsed:  len(chunks),
			GenerationMethod: GenerationMethodExtraction,
		},
	}
}
