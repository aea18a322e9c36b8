// Package main provides the comply CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/obiajulu/comply/cli"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	apiURL  string
	verbose bool
)

func main() {
	// Load .env file if present (ignore "file not found" errors)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Warning: failed to load .env file: %v\n", err)
		}
	}

	rootCmd := &cobra.Command{
		Use:   "comply",
		Short: "Terminal client for the compliance-analysis agent backend",
		Long: `A terminal client for a multi-agent compliance-analysis backend.

Chat with the agent team over a live event stream, or upload policy and
claims documents (PDF/DOCX) for retrieval-augmented analysis.`,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Backend base URL (overrides COMPLY_API_URL)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show agent and tool events")

	// Add commands
	rootCmd.AddCommand(chatCmd())
	rootCmd.AddCommand(askCmd())
	rootCmd.AddCommand(uploadCmd())
	rootCmd.AddCommand(healthCmd())
	rootCmd.AddCommand(sessionsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func chatCmd() *cobra.Command {
	var sessionID string
	var dbPath string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start the interactive chat and upload interface",
		Long: `Start the full-screen terminal interface.

The chat screen streams agent events live: which agent is active, tool
calls and results, and the answer text as it is produced. Tab switches to
the upload screen for submitting document batches.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := cli.Options{APIURL: apiURL, Verbose: verbose}
			return cli.Chat(context.Background(), sessionID, dbPath, opts)
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "", "Session ID for transcript persistence")
	cmd.Flags().StringVar(&dbPath, "db", "", "Database path for transcript storage")

	return cmd
}

func askCmd() *cobra.Command {
	var sessionID string
	var dbPath string

	cmd := &cobra.Command{
		Use:   "ask [query]",
		Short: "Send a single query and stream the answer to stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := cli.Options{APIURL: apiURL, Verbose: verbose}
			return cli.Ask(context.Background(), args[0], sessionID, dbPath, opts)
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "", "Session ID for transcript persistence")
	cmd.Flags().StringVar(&dbPath, "db", "", "Database path for transcript storage")

	return cmd
}

func uploadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload [files...]",
		Short: "Upload PDF/DOCX documents as one batch",
		Long: `Upload documents to the backend for embedding.

All files are sent together as a single multipart batch. Only .pdf and
.docx files are accepted; an unsupported extension rejects the whole
batch before anything is sent.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := cli.Options{APIURL: apiURL, Verbose: verbose}
			return cli.Upload(context.Background(), args, opts)
		},
	}

	return cmd
}

func healthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check backend liveness and list its agents",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := cli.Options{APIURL: apiURL, Verbose: verbose}
			return cli.HealthCheck(context.Background(), opts)
		},
	}

	return cmd
}

func sessionsCmd() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List saved transcript sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.Sessions(context.Background(), dbPath)
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "Database path for transcript storage")

	return cmd
}
