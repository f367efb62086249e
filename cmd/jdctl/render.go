package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jharjadi/jdgen/internal/history"
	"github.com/jharjadi/jdgen/internal/model"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")).
			MarginTop(1)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

func renderGenerate(w io.Writer, resp *model.GenerateResponse, entryID int64) {
	var sb strings.Builder

	switch {
	case resp.GeneratedJD != "":
		sb.WriteString(titleStyle.Render("Generated job description") + "\n\n")
		sb.WriteString(strings.TrimSpace(resp.GeneratedJD) + "\n")
	case resp.Draft != nil:
		d := resp.Draft
		sb.WriteString(titleStyle.Render(fmt.Sprintf("%s - %s", d.Title, d.Department)) + "\n")
		if d.Sections.Intro != "" {
			sb.WriteString("\n" + d.Sections.Intro + "\n")
		}
		writeBullets(&sb, "Key Responsibilities", d.Sections.Responsibilities)
		writeBullets(&sb, "Requirements", d.Sections.Requirements)
		writeBullets(&sb, "Nice to Have", d.Sections.NiceToHaves)
		sb.WriteString("\n" + mutedStyle.Render(fmt.Sprintf("Draft built from %d similar job(s).", d.Metadata.SimilarJobsUsed)) + "\n")
	}

	if len(resp.Guides) > 0 {
		sb.WriteString(mutedStyle.Render("Leveling guides: "+strings.Join(resp.Guides, ", ")) + "\n")
	}
	if len(resp.Citations) > 0 {
		sb.WriteString(sectionStyle.Render("Sources") + "\n")
		for _, c := range resp.Citations {
			fmt.Fprintf(&sb, "  • %s %s\n", c.Heading, mutedStyle.Render("["+c.ChunkID+"]"))
		}
	} else if len(resp.SimilarChunks) > 0 {
		sb.WriteString(sectionStyle.Render("Similar postings") + "\n")
		for _, c := range resp.SimilarChunks {
			fmt.Fprintf(&sb, "  • %s %s\n", orUntitled(c.Heading), mutedStyle.Render("["+c.ChunkID+"]"))
		}
	}
	if resp.Debug != nil {
		dbg := resp.Debug
		sb.WriteString(sectionStyle.Render("Debug") + "\n")
		fmt.Fprintf(&sb, "  candidates: vec=%d fts=%d merged=%d\n", dbg.VecCandidates, dbg.FTSCandidates, dbg.MergedCandidates)
		fmt.Fprintf(&sb, "  reranker: used=%t skipped=%t\n", dbg.RerankerUsed, dbg.RerankerSkipped)
		fmt.Fprintf(&sb, "  examples: %d (~%d tokens), guide context %d bytes\n", dbg.Examples, dbg.ExampleTokensEst, dbg.ContextBytes)
	}
	if entryID > 0 {
		sb.WriteString("\n" + mutedStyle.Render(fmt.Sprintf("Saved to history as #%d.", entryID)) + "\n")
	}
	io.WriteString(w, sb.String())
}

func renderLevel(w io.Writer, resp *model.LevelResponse, entryID int64) {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Target level "+resp.TargetLevel) + "\n")
	sb.WriteString(mutedStyle.Render(fmt.Sprintf("Guides: %s (%d bytes)", strings.Join(resp.Guides, ", "), resp.ContextBytes)) + "\n\n")
	if resp.LeveledJD != "" {
		sb.WriteString(strings.TrimSpace(resp.LeveledJD) + "\n")
	} else {
		sb.WriteString(sectionStyle.Render("Prompt (no LLM configured on the server)") + "\n")
		sb.WriteString(resp.Prompt + "\n")
	}
	if entryID > 0 {
		sb.WriteString("\n" + mutedStyle.Render(fmt.Sprintf("Saved to history as #%d.", entryID)) + "\n")
	}
	io.WriteString(w, sb.String())
}

func renderHistoryList(w io.Writer, entries []history.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No history yet."))
		return
	}
	for _, e := range entries {
		level := e.TargetLevel
		if level == "" {
			level = "-"
		}
		fmt.Fprintf(w, "%s  %-8s  %-6s  %s %s\n",
			titleStyle.Render(fmt.Sprintf("#%-4d", e.ID)),
			e.Kind,
			level,
			e.Title,
			mutedStyle.Render(e.CreatedAt.Local().Format("2006-01-02 15:04")),
		)
	}
}

func renderGuides(w io.Writer, infos []model.GuideInfo) {
	for _, g := range infos {
		line := fmt.Sprintf("%-28s %6d bytes", g.ID, g.Bytes)
		if g.Truncated {
			line += " " + failStyle.Render("truncated")
		}
		if g.Title != "" {
			line += "  " + mutedStyle.Render(g.Title)
		}
		fmt.Fprintln(w, line)
	}
}

func renderHealth(w io.Writer, h *model.HealthResponse) {
	status := okStyle.Render(h.Status)
	if h.Status != "ok" {
		status = failStyle.Render(h.Status)
	}
	fmt.Fprintf(w, "status: %s\ndb:     %s\nguides: %d\n", status, h.DB, h.Guides)
}

func writeBullets(sb *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	sb.WriteString(sectionStyle.Render(title) + "\n")
	for _, it := range items {
		fmt.Fprintf(sb, "  • %s\n", it)
	}
}

func orUntitled(s string) string {
	if s == "" {
		return "(untitled)"
	}
	return s
}
