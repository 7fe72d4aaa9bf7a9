package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"kwarg/internal/diag"
	"kwarg/internal/driver"
	"kwarg/internal/pipeline"
)

var expandCmd = &cobra.Command{
	Use:   "expand [flags] <file|directory|->",
	Short: "Rewrite keyword-argument calls into positional calls",
	Long: `Expand strips declarations and rewrites every call to a declared name.
Output goes to stdout unless --write or --out-dir is given`,
	Args: cobra.ExactArgs(1),
	RunE: runExpand,
}

func init() {
	expandCmd.Flags().BoolP("write", "w", false, "write each result next to its source, without the input extension")
	expandCmd.Flags().StringP("out-dir", "o", "", "write results below this directory, overrides [output].dir")
	expandCmd.Flags().String("ui", "auto", "show a progress view for directories (auto|on|off)")
	expandCmd.Flags().Bool("watch", false, "re-run whenever an input file changes")
	expandCmd.Flags().Bool("cache", false, "reuse earlier results from the disk cache, overrides [cache].enabled")
	expandCmd.Flags().Int("jobs", 0, "max parallel workers for directory processing (0=auto)")
	addRewriteFlags(expandCmd)
	addReportFlags(expandCmd, "pretty")
}

type expandRun struct {
	target string
	st     *settings
	report reportOptions
	write  bool
	outDir string
	ui     uiMode
	args   []string
	stdout io.Writer
	stderr io.Writer
}

func runExpand(cmd *cobra.Command, args []string) error {
	target := args[0]
	st, err := loadSettings(cmd, target)
	if err != nil {
		return err
	}

	r := &expandRun{target: target, st: st, args: os.Args[1:], stdout: os.Stdout, stderr: os.Stderr}
	if r.write, err = cmd.Flags().GetBool("write"); err != nil {
		return err
	}
	if r.outDir, err = cmd.Flags().GetString("out-dir"); err != nil {
		return err
	}
	if r.outDir == "" && !r.write {
		r.outDir = st.config.Output.Dir
	}
	if r.write && r.outDir != "" && cmd.Flags().Changed("out-dir") {
		return fmt.Errorf("--write and --out-dir are mutually exclusive")
	}
	uiFlag, err := cmd.Flags().GetString("ui")
	if err != nil {
		return err
	}
	if r.ui, err = readUIMode(uiFlag); err != nil {
		return err
	}
	watch, err := cmd.Flags().GetBool("watch")
	if err != nil {
		return err
	}
	if st.opts.Jobs, err = cmd.Flags().GetInt("jobs"); err != nil {
		return err
	}
	if st.opts.Cache, err = openCache(cmd, st.config); err != nil {
		return err
	}
	if r.report, err = readReportOptions(cmd, os.Stderr); err != nil {
		return err
	}
	if target == "-" && (r.write || watch) {
		return fmt.Errorf("--write and --watch need a file or directory")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if !watch {
		failed, err := r.once(ctx)
		if err != nil {
			return err
		}
		if failed {
			return errDiagnostics
		}
		return nil
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	if _, err := r.once(ctx); err != nil {
		return err
	}
	w := driver.Watcher{
		Extensions: st.opts.Extensions,
		OnChange: func(paths []string) {
			fmt.Fprintf(r.stderr, "-- change: %s\n", strings.Join(pipeline.DisplayPaths(paths, filepath.Dir(target)), ", "))
			if _, err := r.once(ctx); err != nil {
				fmt.Fprintln(r.stderr, "error:", err)
			}
		},
	}
	if err := w.Run(ctx, target); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// once runs a single expansion and reports whether it produced errors.
func (r *expandRun) once(ctx context.Context) (bool, error) {
	var (
		res *driver.ExpandResult
		err error
	)
	isDir := false
	if r.target != "-" {
		info, statErr := os.Stat(r.target)
		if statErr != nil {
			return false, fmt.Errorf("failed to stat path: %w", statErr)
		}
		isDir = info.IsDir()
	}

	switch {
	case r.target == "-":
		data, readErr := io.ReadAll(os.Stdin)
		if readErr != nil {
			return false, fmt.Errorf("failed to read stdin: %w", readErr)
		}
		res, err = driver.ExpandSource(ctx, "<stdin>", data, r.st.opts)
		if err == nil {
			err = r.emit(res, nil)
		}
	case isDir && shouldUseTUI(r.ui):
		files, listErr := driver.ListFiles(r.target, r.st.opts)
		if listErr != nil {
			return false, listErr
		}
		display := make([]string, len(files))
		for i, f := range files {
			display[i] = pipeline.DisplayPath(f, r.target)
		}
		title := "expanding " + pipeline.DisplayPath(r.target, "")
		res, err = runWithUI(title, display, func(sink pipeline.ProgressSink) (*driver.ExpandResult, error) {
			opts := r.st.opts
			opts.Progress = sink
			out, runErr := driver.ExpandDir(ctx, r.target, opts)
			if runErr != nil || r.toStdout() {
				return out, runErr
			}
			return out, r.emit(out, sink)
		})
		if err == nil && r.toStdout() {
			err = r.emit(res, nil)
		}
	default:
		res, err = driver.Expand(ctx, r.target, r.st.opts)
		if err == nil {
			err = r.emit(res, nil)
		}
	}
	if err != nil {
		return false, err
	}

	if err := report(r.stderr, res.Bag, res.FileSet, r.report, r.args); err != nil {
		return false, err
	}
	if r.st.opts.EnableTimings {
		printTimings(r.stderr, res)
	}
	if !r.report.quiet {
		fmt.Fprintf(r.stderr, "%d call(s) expanded, %d failed, %d declaration(s)\n",
			res.Stats.Expanded, res.Stats.Failed, res.Stats.Declarations)
	}
	return res.HasErrors(), nil
}

// emit writes or prints every file result.
func (r *expandRun) emit(res *driver.ExpandResult, sink pipeline.ProgressSink) error {
	toStdout := r.toStdout()
	start := time.Now()
	for i := range res.Files {
		fr := &res.Files[i]
		if loadFailed(fr) {
			continue
		}
		if toStdout {
			if len(res.Files) > 1 {
				fmt.Fprintf(r.stdout, "== %s ==\n", fr.Path)
			}
			if _, err := io.WriteString(r.stdout, fr.Output); err != nil {
				return err
			}
			continue
		}
		src := res.FileSet.Get(fr.FileID)
		dst, err := r.destination(src.Path, fr.Path)
		if err != nil {
			return err
		}
		pipeline.Emit(sink, pipeline.Event{File: fr.Path, Stage: pipeline.StageWrite, Status: pipeline.StatusWorking})
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		if err := driver.WriteFile(dst, fr.Output, src.Flags); err != nil {
			pipeline.Emit(sink, pipeline.Event{File: fr.Path, Stage: pipeline.StageWrite, Status: pipeline.StatusError, Err: err})
			return fmt.Errorf("failed to write %s: %w", dst, err)
		}
		pipeline.Emit(sink, pipeline.Event{File: fr.Path, Stage: pipeline.StageWrite, Status: pipeline.StatusDone})
	}
	if !toStdout {
		res.Timings.Add(pipeline.StageWrite, time.Since(start))
	}
	return nil
}

func (r *expandRun) toStdout() bool {
	return !r.write && r.outDir == ""
}

func (r *expandRun) destination(src, display string) (string, error) {
	if r.write {
		out := trimInputExt(src, r.st.opts.Extensions)
		if out == src {
			return "", fmt.Errorf("%s: refusing to overwrite a file without an input extension", src)
		}
		return out, nil
	}
	rel := display
	if filepath.IsAbs(rel) || strings.HasPrefix(rel, "..") {
		rel = filepath.Base(src)
	}
	return filepath.Join(r.outDir, trimInputExt(filepath.FromSlash(rel), r.st.opts.Extensions)), nil
}

// trimInputExt drops a trailing input extension: main.rs.kw becomes main.rs.
func trimInputExt(path string, exts []string) string {
	if len(exts) == 0 {
		exts = []string{".kw"}
	}
	ext := filepath.Ext(path)
	for _, e := range exts {
		if ext == e && len(path) > len(e) && !strings.HasSuffix(path, string(filepath.Separator)+e) {
			return strings.TrimSuffix(path, e)
		}
	}
	return path
}

func loadFailed(fr *driver.FileResult) bool {
	if fr.Bag == nil {
		return false
	}
	for _, d := range fr.Bag.Items() {
		if d.Code == diag.IOLoadFileError {
			return true
		}
	}
	return false
}
