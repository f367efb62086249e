package leveling

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jharjadi/jdgen/internal/model"
)

// GuideDelimiter separates guide blocks in an assembled context.
const GuideDelimiter = "\n---\n"

// Section is one guide handed to Assemble.
type Section struct {
	ID      string
	Content string
}

// Assemble renders sections in order as
//
//	### Guide: <id>
//	<content>
//
// blocks joined by GuideDelimiter. Each content is cut to perDocCap bytes,
// backing off to a rune boundary. Assembly stops at the first block that
// would push the result past totalCap; that block and every later one are
// omitted.
func Assemble(sections []Section, perDocCap, totalCap int) (string, error) {
	out, _, err := AssembleCount(sections, perDocCap, totalCap)
	return out, err
}

// AssembleCount is Assemble that also reports how many leading sections
// made it into the result.
func AssembleCount(sections []Section, perDocCap, totalCap int) (string, int, error) {
	if perDocCap <= 0 || totalCap <= 0 {
		return "", 0, fmt.Errorf("%w: per-document cap %d and total cap %d must be positive",
			model.ErrInvalidConfiguration, perDocCap, totalCap)
	}

	var sb strings.Builder
	n := 0
	for i, s := range sections {
		block := "### Guide: " + s.ID + "\n" + TruncateBytes(s.Content, perDocCap) + "\n"
		if i > 0 {
			block = GuideDelimiter + block
		}
		if sb.Len()+len(block) > totalCap {
			break
		}
		sb.WriteString(block)
		n++
	}
	return sb.String(), n, nil
}

// TruncateBytes returns the longest prefix of s that is at most n bytes and
// does not split a UTF-8 sequence.
func TruncateBytes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 0 {
		return ""
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
