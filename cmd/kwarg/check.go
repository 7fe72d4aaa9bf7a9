package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"kwarg/internal/driver"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] <file|directory>",
	Short: "Report expansion diagnostics without producing output",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().Int("jobs", 0, "max parallel workers for directory processing (0=auto)")
	addRewriteFlags(checkCmd)
	addReportFlags(checkCmd, "pretty")
}

func runCheck(cmd *cobra.Command, args []string) error {
	target := args[0]
	st, err := loadSettings(cmd, target)
	if err != nil {
		return err
	}
	if st.opts.Jobs, err = cmd.Flags().GetInt("jobs"); err != nil {
		return err
	}
	ro, err := readReportOptions(cmd, os.Stdout)
	if err != nil {
		return err
	}

	res, err := driver.Expand(cmd.Context(), target, st.opts)
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}
	if err := report(os.Stdout, res.Bag, res.FileSet, ro, os.Args[1:]); err != nil {
		return err
	}
	if st.opts.EnableTimings {
		printTimings(os.Stderr, res)
	}
	if res.HasErrors() {
		return errDiagnostics
	}
	if !ro.quiet && ro.format == "pretty" && res.Bag.Len() == 0 {
		fmt.Fprintf(os.Stdout, "ok: %d file(s), %d call(s)\n", len(res.Files), res.Stats.Expanded)
	}
	return nil
}
