package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jharjadi/jdgen/internal/client"
	"github.com/jharjadi/jdgen/internal/history"
)

var (
	apiURL      string
	apiKey      string
	historyPath string
	debug       bool
)

var rootCmd = &cobra.Command{
	Use:           "jdctl",
	Short:         "Draft and level job descriptions",
	Long:          "jdctl talks to a jdgen server to draft job descriptions from similar postings, adjust them to a target level, and keep a local history of results.",
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		slog.SetDefault(setupLogger(debug))
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", envOr("JDCTL_API_URL", "http://localhost:8000"), "jdgen API base URL (env JDCTL_API_URL)")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", os.Getenv("JDCTL_API_KEY"), "API key sent as x-api-key (env JDCTL_API_KEY)")
	rootCmd.PersistentFlags().StringVar(&historyPath, "history-db", envOr("JDCTL_HISTORY_DB", defaultHistoryPath()), "path to the local history database (env JDCTL_HISTORY_DB)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// setupLogger logs to stderr so stdout stays clean for results and the MCP
// stdio transport.
func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelWarn
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}

func newClient() (*client.Client, error) {
	return client.New(apiURL, apiKey)
}

func openHistory() (*history.Store, error) {
	return history.Open(historyPath)
}

func defaultHistoryPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "jdctl-history.db"
	}
	return filepath.Join(dir, "jdctl", "history.db")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// readText returns the contents of path, or of in when path is "-" or empty.
func readText(path string, in io.Reader) (string, error) {
	var (
		b   []byte
		err error
	)
	if path == "" || path == "-" {
		b, err = io.ReadAll(in)
	} else {
		b, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("reading input: %w", err)
	}
	text := strings.TrimSpace(string(b))
	if text == "" {
		return "", fmt.Errorf("input is empty")
	}
	return text, nil
}
