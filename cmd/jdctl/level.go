package main

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jharjadi/jdgen/internal/history"
	"github.com/jharjadi/jdgen/internal/model"
)

var (
	levelFile      string
	levelTarget    string
	levelMaxGuides int
	levelJSON      bool
	levelNoHistory bool
)

var levelCmd = &cobra.Command{
	Use:   "level",
	Short: "Adjust a job description to a target level",
	Long:  "Reads a job description from --file (or stdin) and asks the server to re-level it using the leveling guides.",
	Example: `  jdctl level --file posting.txt --level mgr5
  cat posting.txt | jdctl level --level vp`,
	Args: cobra.NoArgs,
	RunE: runLevel,
}

func init() {
	f := levelCmd.Flags()
	f.StringVarP(&levelFile, "file", "f", "-", "file holding the job description, - for stdin")
	f.StringVarP(&levelTarget, "level", "l", "", "target level: uniN, mgrN, vp or svp")
	f.IntVar(&levelMaxGuides, "max-guides", 0, "number of guides to include (server default when 0)")
	f.BoolVar(&levelJSON, "json", false, "print the raw JSON response")
	f.BoolVar(&levelNoHistory, "no-history", false, "do not record the result locally")
	levelCmd.MarkFlagRequired("level")
	rootCmd.AddCommand(levelCmd)
}

func runLevel(cmd *cobra.Command, args []string) error {
	text, err := readText(levelFile, cmd.InOrStdin())
	if err != nil {
		return err
	}
	c, err := newClient()
	if err != nil {
		return err
	}

	resp, err := c.Level(cmd.Context(), model.LevelRequest{
		JobDescription: text,
		TargetLevel:    levelTarget,
		MaxGuides:      levelMaxGuides,
	})
	if err != nil {
		return err
	}

	var entryID int64
	if !levelNoHistory {
		entryID = record(cmd, history.KindLevel, firstLine(text), "", resp.TargetLevel, resp)
	}

	if levelJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}
	renderLevel(cmd.OutOrStdout(), resp, entryID)
	return nil
}

// firstLine names a leveled posting in the history by its opening line.
func firstLine(text string) string {
	line, _, _ := strings.Cut(text, "\n")
	line = strings.TrimSpace(strings.TrimLeft(line, "# "))
	if len(line) > 80 {
		line = line[:80]
	}
	return line
}
