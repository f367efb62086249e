package main

import (
	"encoding/json"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jharjadi/jdgen/internal/history"
	"github.com/jharjadi/jdgen/internal/model"
)

var (
	genTitle        string
	genDepartment   string
	genRequirements []string
	genLevel        string
	genDebug        bool
	genJSON         bool
	genNoHistory    bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Draft a job description from similar postings",
	Example: `  jdctl generate --title "Senior Backend Engineer" --department Platform \
    --require Go --require PostgreSQL --level uni5`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	f := generateCmd.Flags()
	f.StringVarP(&genTitle, "title", "t", "", "job title")
	f.StringVarP(&genDepartment, "department", "d", "", "department or team")
	f.StringArrayVarP(&genRequirements, "require", "r", nil, "a must-have requirement (repeatable)")
	f.StringVarP(&genLevel, "level", "l", "", "target level: uniN, mgrN, vp or svp")
	f.BoolVar(&genDebug, "show-debug", false, "include retrieval diagnostics")
	f.BoolVar(&genJSON, "json", false, "print the raw JSON response")
	f.BoolVar(&genNoHistory, "no-history", false, "do not record the result locally")
	generateCmd.MarkFlagRequired("title")
	generateCmd.MarkFlagRequired("department")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	c, err := newClient()
	if err != nil {
		return err
	}

	resp, err := c.Generate(cmd.Context(), model.GenerateRequest{
		Title:        genTitle,
		Department:   genDepartment,
		Requirements: genRequirements,
		TargetLevel:  genLevel,
		Debug:        genDebug,
	})
	if err != nil {
		return err
	}

	var entryID int64
	if !genNoHistory {
		entryID = record(cmd, history.KindGenerate, genTitle, genDepartment, genLevel, resp)
	}

	if genJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}
	renderGenerate(cmd.OutOrStdout(), resp, entryID)
	return nil
}

// record saves a result to the local history. Failures are logged and do
// not fail the command; the result has already been produced.
func record(cmd *cobra.Command, kind, title, department, level string, result any) int64 {
	store, err := openHistory()
	if err != nil {
		slog.Warn("history unavailable", "path", historyPath, "error", err)
		return 0
	}
	defer store.Close()

	e, err := store.Record(cmd.Context(), kind, title, department, level, result)
	if err != nil {
		slog.Warn("recording history failed", "error", err)
		return 0
	}
	slog.Debug("recorded history entry", "id", e.ID, "kind", kind)
	return e.ID
}
