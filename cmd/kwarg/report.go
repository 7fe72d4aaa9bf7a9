package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"kwarg/internal/diag"
	"kwarg/internal/diagfmt"
	"kwarg/internal/source"
	"kwarg/internal/version"
)

type reportOptions struct {
	format    string
	pathMode  diagfmt.PathMode
	withNotes bool
	showFixes bool
	preview   bool
	color     bool
	quiet     bool
	// minSeverity filters the pretty and short formats.
	minSeverity diag.Severity
}

func addReportFlags(cmd *cobra.Command, defaultFormat string) {
	cmd.Flags().String("format", defaultFormat, "diagnostics format (pretty|short|json|sarif)")
	cmd.Flags().String("path-mode", "auto", "how to print file paths (auto|absolute|relative|basename)")
	cmd.Flags().Bool("with-notes", true, "include diagnostic notes in output")
	cmd.Flags().Bool("suggest", false, "include fix suggestions in output")
	cmd.Flags().Bool("preview", false, "preview fix edits (implies --suggest)")
	cmd.Flags().String("min-severity", "info", "hide diagnostics below this severity (info|warning|error)")
}

func readReportOptions(cmd *cobra.Command, out *os.File) (reportOptions, error) {
	var ro reportOptions
	var err error
	if ro.format, err = cmd.Flags().GetString("format"); err != nil {
		return ro, fmt.Errorf("failed to get format flag: %w", err)
	}
	switch ro.format {
	case "pretty", "short", "json", "sarif":
	default:
		return ro, fmt.Errorf("unknown format: %s", ro.format)
	}
	mode, err := cmd.Flags().GetString("path-mode")
	if err != nil {
		return ro, fmt.Errorf("failed to get path-mode flag: %w", err)
	}
	var ok bool
	if ro.pathMode, ok = diagfmt.ParsePathMode(mode); !ok {
		return ro, fmt.Errorf("unknown path mode: %s", mode)
	}
	if ro.withNotes, err = cmd.Flags().GetBool("with-notes"); err != nil {
		return ro, err
	}
	if ro.showFixes, err = cmd.Flags().GetBool("suggest"); err != nil {
		return ro, err
	}
	if ro.preview, err = cmd.Flags().GetBool("preview"); err != nil {
		return ro, err
	}
	ro.showFixes = ro.showFixes || ro.preview
	if ro.color, err = useColor(cmd, out); err != nil {
		return ro, err
	}
	sev, err := cmd.Flags().GetString("min-severity")
	if err != nil {
		return ro, err
	}
	if ro.minSeverity, err = diag.ParseSeverity(sev); err != nil {
		return ro, err
	}
	if ro.quiet, err = cmd.Root().PersistentFlags().GetBool("quiet"); err != nil {
		return ro, err
	}
	if ro.quiet {
		ro.minSeverity = diag.SevError
	}
	return ro, nil
}

// report renders bag in the chosen format. The pretty and short formats
// drop diagnostics below ro.minSeverity; --quiet raises it to errors.
func report(w io.Writer, bag *diag.Bag, fs *source.FileSet, ro reportOptions, args []string) error {
	dropped := bag.Dropped()
	if ro.minSeverity > diag.SevInfo && (ro.format == "pretty" || ro.format == "short") {
		bag = bag.Filter(func(d *diag.Diagnostic) bool { return d.Severity >= ro.minSeverity })
	}
	switch ro.format {
	case "pretty":
		diagfmt.Pretty(w, bag, fs, diagfmt.PrettyOpts{
			Color:       ro.color,
			Context:     2,
			PathMode:    ro.pathMode,
			ShowNotes:   ro.withNotes,
			ShowFixes:   ro.showFixes,
			ShowPreview: ro.preview,
		})
		return reportDropped(w, dropped)
	case "short":
		if out := diag.FormatShortDiagnostics(bag.Pointers(), fs, ro.withNotes); out != "" {
			if _, err := fmt.Fprintln(w, out); err != nil {
				return err
			}
		}
		return reportDropped(w, dropped)
	case "json":
		if err := diagfmt.JSON(w, bag, fs, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         ro.pathMode,
			IncludeNotes:     ro.withNotes,
			IncludeFixes:     ro.showFixes,
			IncludePreviews:  ro.preview,
		}); err != nil {
			return fmt.Errorf("failed to format diagnostics: %w", err)
		}
	case "sarif":
		if err := diagfmt.Sarif(w, bag, fs, diagfmt.SarifRunMeta{
			ToolName:       "kwarg",
			ToolVersion:    version.Version,
			InvocationArgs: args,
		}); err != nil {
			return fmt.Errorf("failed to format diagnostics: %w", err)
		}
	}
	return nil
}

func reportDropped(w io.Writer, n int) error {
	if n == 0 {
		return nil
	}
	_, err := fmt.Fprintf(w, "%d more diagnostic(s) not shown; raise --max-diagnostics to see them\n", n)
	return err
}
