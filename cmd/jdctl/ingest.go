package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jharjadi/jdgen/internal/model"
)

var (
	ingestFile       string
	ingestHeading    string
	ingestDepartment string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Add a job description to the example corpus (admin key required)",
	Args:  cobra.NoArgs,
	RunE:  runIngest,
}

func init() {
	f := ingestCmd.Flags()
	f.StringVarP(&ingestFile, "file", "f", "-", "file holding the job description, - for stdin")
	f.StringVar(&ingestHeading, "heading", "", "title shown for the example")
	f.StringVarP(&ingestDepartment, "department", "d", "", "department of the example")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	text, err := readText(ingestFile, cmd.InOrStdin())
	if err != nil {
		return err
	}
	c, err := newClient()
	if err != nil {
		return err
	}

	resp, err := c.Ingest(cmd.Context(), model.IngestRequest{
		Content:    text,
		Heading:    ingestHeading,
		Department: ingestDepartment,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s chunk %s\n", okStyle.Render(resp.Result), resp.ChunkID)
	return nil
}
