package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jharjadi/jdgen/internal/history"
)

var (
	historyLimit int
	historyJSON  bool
	exportDir    string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse and export past results",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent results",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openHistory()
		if err != nil {
			return err
		}
		defer store.Close()

		entries, err := store.List(cmd.Context(), historyLimit)
		if err != nil {
			return err
		}
		renderHistoryList(cmd.OutOrStdout(), entries)
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print one result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEntry(cmd, args[0])
		if err != nil {
			return err
		}
		if historyJSON {
			return history.WriteJSON(cmd.OutOrStdout(), e)
		}
		return history.WriteText(cmd.OutOrStdout(), e)
	},
}

var historyExportCmd = &cobra.Command{
	Use:   "export <id>",
	Short: "Write a result to <dir> as JSON and plain text",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEntry(cmd, args[0])
		if err != nil {
			return err
		}
		jsonPath, textPath, err := history.Export(exportDir, e)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n%s\n", jsonPath, textPath)
		return nil
	},
}

func init() {
	historyListCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of entries to show")
	historyShowCmd.Flags().BoolVar(&historyJSON, "json", false, "print as JSON")
	historyExportCmd.Flags().StringVarP(&exportDir, "dir", "o", ".", "output directory")

	historyCmd.AddCommand(historyListCmd, historyShowCmd, historyExportCmd)
	rootCmd.AddCommand(historyCmd)
}

func loadEntry(cmd *cobra.Command, arg string) (history.Entry, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return history.Entry{}, fmt.Errorf("invalid history id %q", arg)
	}
	store, err := openHistory()
	if err != nil {
		return history.Entry{}, err
	}
	defer store.Close()
	return store.Get(cmd.Context(), id)
}
