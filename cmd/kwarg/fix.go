package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"kwarg/internal/driver"
	"kwarg/internal/fix"
)

var fixCmd = &cobra.Command{
	Use:   "fix [flags] <file|directory>",
	Short: "Apply suggested fixes to a source file or directory",
	Long:  "Run expansion, collect the fixes attached to its diagnostics, and apply them according to the chosen strategy.",
	Args:  cobra.ExactArgs(1),
	RunE:  runFix,
}

func init() {
	addFixFlags(fixCmd.Flags())
	addRewriteFlags(fixCmd)
}

func addFixFlags(flags *pflag.FlagSet) {
	flags.Bool("all", false, "apply all always-safe fixes")
	flags.Bool("once", false, "apply the first available fix (default)")
	flags.String("id", "", "apply the fix with this identifier")
	flags.Bool("heuristics", false, "with --all, also apply safe-with-heuristics fixes such as argument renames")
	flags.Bool("dry-run", false, "show what would change without writing files")
	flags.Bool("diff", false, "print a unified diff of every changed file")
}

// applyOptions turns the strategy flags into engine options.
func applyOptions(flags *pflag.FlagSet) (fix.ApplyOptions, error) {
	var opts fix.ApplyOptions
	all, err := flags.GetBool("all")
	if err != nil {
		return opts, err
	}
	once, err := flags.GetBool("once")
	if err != nil {
		return opts, err
	}
	if opts.TargetID, err = flags.GetString("id"); err != nil {
		return opts, err
	}
	if opts.AllowHeuristics, err = flags.GetBool("heuristics"); err != nil {
		return opts, err
	}
	if opts.DryRun, err = flags.GetBool("dry-run"); err != nil {
		return opts, err
	}

	switch {
	case opts.TargetID != "" && (all || once):
		return opts, errors.New("--id cannot be combined with --all or --once")
	case all && once:
		return opts, errors.New("--all and --once are mutually exclusive")
	case opts.TargetID != "":
		opts.Mode = fix.ApplyModeID
	case all:
		opts.Mode = fix.ApplyModeAll
	default:
		opts.Mode = fix.ApplyModeOnce
	}
	return opts, nil
}

func runFix(cmd *cobra.Command, args []string) error {
	target := args[0]
	opts, err := applyOptions(cmd.Flags())
	if err != nil {
		return err
	}
	showDiff, err := cmd.Flags().GetBool("diff")
	if err != nil {
		return err
	}

	st, err := loadSettings(cmd, target)
	if err != nil {
		return err
	}
	res, err := driver.Expand(cmd.Context(), target, st.opts)
	if err != nil {
		return fmt.Errorf("fix: %w", err)
	}
	res.Bag.Sort()

	applied, applyErr := fix.Apply(res.FileSet, res.Bag.Items(), opts)
	if showDiff && applied != nil {
		if err := writeDiffs(os.Stdout, applied.FileChanges); err != nil {
			return err
		}
	}
	return handleApplyResult(os.Stdout, applied, applyErr, opts.DryRun)
}

// writeDiffs prints one unified diff per changed file.
func writeDiffs(w io.Writer, changes []fix.FileChange) error {
	for _, c := range changes {
		err := difflib.WriteUnifiedDiff(w, difflib.UnifiedDiff{
			A:        difflib.SplitLines(string(c.Original)),
			B:        difflib.SplitLines(string(c.Content)),
			FromFile: "a/" + c.Path,
			ToFile:   "b/" + c.Path,
			Context:  3,
		})
		if err != nil {
			return fmt.Errorf("diff %s: %w", c.Path, err)
		}
	}
	return nil
}

// handleApplyResult prints what was (or would be) applied, changed and
// skipped. Finding nothing to apply is not an error.
func handleApplyResult(w io.Writer, res *fix.ApplyResult, applyErr error, dryRun bool) error {
	if res == nil {
		return applyErr
	}
	if errors.Is(applyErr, fix.ErrNoFixes) && len(res.Applied) == 0 {
		_, err := fmt.Fprintln(w, "No applicable fixes found.")
		return err
	}

	applyVerb, changeHeader := "Applied", "Updated files:"
	if dryRun {
		applyVerb, changeHeader = "Would apply", "Files that would change:"
	}
	if len(res.Applied) > 0 {
		fmt.Fprintf(w, "%s %d fix(es):\n", applyVerb, len(res.Applied))
		for _, item := range res.Applied {
			fmt.Fprintf(w, "  %s [%s] at %s (%d edits, %s)\n",
				item.Title, item.ID, orDefault(item.PrimaryPath, "(unknown location)"), item.EditCount, item.Applicability)
		}
	}
	if len(res.FileChanges) > 0 {
		fmt.Fprintln(w, changeHeader)
		for _, change := range res.FileChanges {
			fmt.Fprintf(w, "  %s (%d edits)\n", change.Path, change.EditCount)
		}
	}
	if len(res.Skipped) > 0 {
		fmt.Fprintln(w, "Skipped fixes:")
		for _, skip := range res.Skipped {
			label := "[" + orDefault(skip.ID, "(unnamed)") + "]"
			if skip.Title != "" {
				label = skip.Title + " " + label
			}
			fmt.Fprintf(w, "  %s: %s\n", label, skip.Reason)
		}
	}
	return applyErr
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
