// gitscope: git repository analysis MCP server
//
// An MCP server (stdio transport) that lets AI coding tools explore a
// git repository and, with an API key configured, generate AI-backed
// commit analyses and project summaries.
//
// Usage:
//
//	gitscope serve     # Start MCP server (stdio transport)
//	gitscope version   # Print the version
//	gitscope update    # Update to the latest release
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	gitscope "github.com/gitscope/gitscope/internal/server"
	"github.com/gitscope/gitscope/internal/updater"
	"github.com/mark3labs/mcp-go/server"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "gitscope",
		Short:         "Git repository analysis MCP server",
		SilenceUsage:  true,
		SilenceErrors: true,
		// Running the binary with no arguments starts the server; MCP
		// clients launch it that way.
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve()
		},
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Start the MCP server on stdio",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return serve()
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the version",
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Printf("gitscope v%s\n", gitscope.Version)
			},
		},
		&cobra.Command{
			Use:   "update",
			Short: "Update gitscope to the latest release",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runUpdate()
			},
		},
	)

	return root
}

func serve() error {
	logger := gitscope.NewLogger()
	defer func() { _ = logger.Sync() }()

	s, cleanup, err := gitscope.New(logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	defer cleanup()

	// Background version check — prints to stderr so it doesn't
	// interfere with MCP's stdio transport on stdout.
	go checkForUpdates()

	return server.ServeStdio(s)
}

// checkForUpdates runs a best-effort version check and prints a notice
// to stderr if a newer release exists. Network failures are silent.
func checkForUpdates() {
	result := updater.CheckVersion(gitscope.Version)
	if result.UpdateAvailable {
		fmt.Fprintf(os.Stderr,
			"\n  Update available: v%s -> v%s\n"+
				"  Run: gitscope update\n"+
				"  Release: %s\n\n",
			result.CurrentVersion, result.LatestVersion, result.ReleaseURL,
		)
	}
}

// runUpdate replaces the running binary with the latest release.
func runUpdate() error {
	fmt.Fprintln(os.Stderr, "Checking for updates...")

	result := updater.CheckVersion(gitscope.Version)
	if !result.UpdateAvailable {
		fmt.Fprintf(os.Stderr, "Already up to date (v%s)\n", result.CurrentVersion)
		return nil
	}

	fmt.Fprintf(os.Stderr, "Updating v%s -> v%s...\n", result.CurrentVersion, result.LatestVersion)
	if err := updater.SelfUpdate(gitscope.Version); err != nil {
		return fmt.Errorf("update failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Updated to v%s. Restart the MCP server to use the new version.\n", result.LatestVersion)
	return nil
}
