package main

import (
	"time"

	"github.com/spf13/cobra"

	"kwarg/internal/lsp"
	"kwarg/internal/version"
)

var lspCmd = &cobra.Command{
	Use:   "lsp",
	Short: "Run the kwarg language server over stdio",
	Args:  cobra.NoArgs,
	RunE:  runLSP,
}

func init() {
	lspCmd.Flags().Duration("debounce", 200*time.Millisecond, "delay between an edit and re-analysis")
}

func runLSP(cmd *cobra.Command, _ []string) error {
	debounce, err := cmd.Flags().GetDuration("debounce")
	if err != nil {
		return err
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return err
	}
	server := lsp.NewServer(version.Version, lsp.Options{
		Debounce:       debounce,
		MaxDiagnostics: maxDiagnostics,
	})
	return server.RunStdio()
}
