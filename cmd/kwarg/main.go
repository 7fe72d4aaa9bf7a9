package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
	"golang.org/x/term"

	"kwarg/internal/prof"
	"kwarg/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "kwarg",
	Short: "Keyword arguments and default values for call sites",
	Long: `kwarg rewrites calls that use keyword arguments and default values
into plain positional calls, driven by "declare" statements in the source`,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
	SilenceUsage:       true,
	SilenceErrors:      true,
}

// errDiagnostics makes the process exit with status 1 after diagnostics
// were already printed.
var errDiagnostics = errors.New("")

var profiler *prof.Session

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(expandCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(declsCmd)
	rootCmd.AddCommand(tokenizeCmd)
	rootCmd.AddCommand(fixCmd)
	rootCmd.AddCommand(lspCmd)
	rootCmd.AddCommand(versionCmd)

	addRootFlags(rootCmd)

	err := rootCmd.Execute()
	// PersistentPostRunE does not run when a command fails
	if stopErr := profiler.Stop(); stopErr != nil {
		fmt.Fprintln(os.Stderr, "error:", stopErr)
	}
	if err != nil {
		if !errors.Is(err, errDiagnostics) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

func addRootFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.String("color", "auto", "colorize output (auto|on|off)")
	flags.Bool("quiet", false, "suppress non-essential output")
	flags.Bool("timings", false, "show timing information")
	flags.Int("max-diagnostics", 100, "maximum number of diagnostics to show")
	flags.String("config", "", "path to kwarg.toml (default: discovered from the target)")
	flags.CountP("verbose", "v", "log verbosity (repeat for more)")
	flags.String("log-file", "", "write logs to this file instead of stderr")
	flags.String("cpu-profile", "", "write a CPU profile to this file")
	flags.String("mem-profile", "", "write a heap profile to this file on exit")
	flags.String("runtime-trace", "", "write a Go runtime trace to this file")
}

func setup(cmd *cobra.Command, args []string) error {
	if err := setupLogging(cmd, args); err != nil {
		return err
	}
	return setupProfiling(cmd)
}

func teardown(*cobra.Command, []string) error {
	return profiler.Stop()
}

func setupProfiling(cmd *cobra.Command) error {
	flags := cmd.Root().PersistentFlags()
	var cfg prof.Config
	var err error
	if cfg.CPU, err = flags.GetString("cpu-profile"); err != nil {
		return fmt.Errorf("failed to get cpu-profile flag: %w", err)
	}
	if cfg.Mem, err = flags.GetString("mem-profile"); err != nil {
		return fmt.Errorf("failed to get mem-profile flag: %w", err)
	}
	if cfg.Trace, err = flags.GetString("runtime-trace"); err != nil {
		return fmt.Errorf("failed to get runtime-trace flag: %w", err)
	}
	if !cfg.Enabled() {
		return nil
	}
	profiler, err = prof.Start(cfg)
	return err
}

func setupLogging(cmd *cobra.Command, _ []string) error {
	verbosity, err := cmd.Root().PersistentFlags().GetCount("verbose")
	if err != nil {
		return err
	}
	logFile, err := cmd.Root().PersistentFlags().GetString("log-file")
	if err != nil {
		return err
	}
	var path *string
	if logFile != "" {
		path = &logFile
	}
	commonlog.Configure(verbosity, path)
	return nil
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func useColor(cmd *cobra.Command, f *os.File) (bool, error) {
	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return false, err
	}
	switch colorFlag {
	case "on":
		return true, nil
	case "off":
		return false, nil
	case "auto":
		return isTerminal(f), nil
	default:
		return false, fmt.Errorf("invalid --color value %q (expected auto|on|off)", colorFlag)
	}
}
