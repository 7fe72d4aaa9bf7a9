package driver

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"kwarg/internal/decl"
	"kwarg/internal/diag"
	"kwarg/internal/observ"
	"kwarg/internal/pipeline"
	"kwarg/internal/rewrite"
	"kwarg/internal/source"
)

// FileResult is the outcome for one target file.
type FileResult struct {
	Path   string
	FileID source.FileID
	Output string
	// Decls lists what the file declared. For cache hits only Signatures
	// are known.
	Decls      []*decl.Declaration
	Signatures []string
	Stats      rewrite.Stats
	Bag        *diag.Bag
	Cached     bool
	Timing     *observ.Report
}

// Failed reports whether the file produced any error diagnostic.
func (r *FileResult) Failed() bool {
	return r.Bag != nil && r.Bag.HasErrors()
}

// ExpandResult collects every file of a run.
type ExpandResult struct {
	FileSet *source.FileSet
	Files   []FileResult
	// Bag holds prelude diagnostics followed by each file's, in file order.
	Bag *diag.Bag
	// PreludeDecls are the declarations every file saw before its own.
	PreludeDecls []*decl.Declaration
	Stats        rewrite.Stats
	Timings      pipeline.Timings
	// Timing sums the per-file phase reports; empty unless timings are on.
	Timing observ.Report
}

// HasErrors reports whether any error diagnostic was produced.
func (r *ExpandResult) HasErrors() bool {
	return r != nil && r.Bag != nil && r.Bag.HasErrors()
}

// Expand dispatches to ExpandDir or ExpandFile depending on target.
func Expand(ctx context.Context, target string, opts Options) (*ExpandResult, error) {
	isDir, err := statDir(target)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", target, err)
	}
	if isDir {
		return ExpandDir(ctx, target, opts)
	}
	return ExpandFile(ctx, target, opts)
}

// ExpandFile rewrites a single file from disk.
func ExpandFile(ctx context.Context, path string, opts Options) (*ExpandResult, error) {
	fs := source.NewFileSet()
	return run(ctx, fs, []string{path}, opts, func() ([]loaded, error) {
		id, err := fs.Load(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
		return []loaded{{id: id}}, nil
	})
}

// ExpandSource rewrites in-memory content registered under name. Stdin and
// editor buffers go through here.
func ExpandSource(ctx context.Context, name string, content []byte, opts Options) (*ExpandResult, error) {
	fs := source.NewFileSet()
	return run(ctx, fs, []string{name}, opts, func() ([]loaded, error) {
		return []loaded{{id: fs.AddVirtual(name, content)}}, nil
	})
}

// ExpandDir rewrites every matching file below dir in parallel. Each file
// is its own unit: it sees the prelude and its own declarations only.
func ExpandDir(ctx context.Context, dir string, opts Options) (*ExpandResult, error) {
	files, err := ListFiles(dir, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	fs := source.NewFileSetWithBase(dir)
	return run(ctx, fs, files, opts, func() ([]loaded, error) {
		out := make([]loaded, len(files))
		for i, path := range files {
			id, loadErr := fs.Load(path)
			if loadErr != nil {
				log.Warningf("failed to load %s: %v", path, loadErr)
				// an empty stand-in gives the diagnostic a location
				id = fs.AddVirtual(path, nil)
			}
			out[i] = loaded{id: id, err: loadErr}
		}
		return out, nil
	})
}

type loaded struct {
	id  source.FileID
	err error
}

type preludeState struct {
	decls    []*decl.Declaration
	contents [][]byte
	session  *rewrite.Session
}

func run(ctx context.Context, fs *source.FileSet, paths []string, opts Options, load func() ([]loaded, error)) (*ExpandResult, error) {
	res := &ExpandResult{FileSet: fs, Bag: diag.NewBag(opts.maxDiagnostics())}

	display := make([]string, len(paths))
	for i, p := range paths {
		display[i] = pipeline.DisplayPath(p, fs.BaseDir())
	}
	pipeline.EmitQueued(opts.Progress, display)

	prelude, err := loadPrelude(fs, opts, res)
	if err != nil {
		return nil, err
	}

	loadStart := time.Now()
	items, err := load()
	if err != nil {
		return nil, err
	}
	res.Timings.Add(pipeline.StageLoad, time.Since(loadStart))

	// Everything is loaded before any worker starts: the FileSet must not
	// grow while workers hold *File pointers into it.
	files := make([]*source.File, len(items))
	for i, it := range items {
		files[i] = fs.Get(it.id)
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	results := make([]FileResult, len(files))
	durations := make([]time.Duration, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(jobs, len(files))))
	for i, file := range files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			if items[i].err != nil {
				results[i] = loadFailure(file, display[i], items[i].err, opts)
				pipeline.Emit(opts.Progress, pipeline.Event{File: display[i], Stage: pipeline.StageLoad, Status: pipeline.StatusError, Err: items[i].err})
				return nil
			}
			start := time.Now()
			results[i] = expandOne(file, display[i], prelude, opts)
			durations[i] = time.Since(start)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i := range results {
		fr := &results[i]
		res.Bag.Merge(fr.Bag)
		res.Stats.Add(fr.Stats)
		res.Timings.Add(pipeline.StageExpand, durations[i])
		if opts.EnableTimings && fr.Timing != nil {
			appendTimingDiagnostic(res.Bag, fr.FileID, newTimingPayload("file", fr.Path, *fr.Timing))
			res.Timing.Merge(*fr.Timing)
		}
	}
	if opts.EnableTimings && len(results) > 1 {
		appendTimingDiagnostic(res.Bag, results[0].FileID, newTimingPayload("run", "", res.Timing))
	}
	res.PreludeDecls = prelude.decls
	log.Infof("expanded %d file(s): %d call(s), %d failed", len(results), res.Stats.Expanded, res.Stats.Failed)
	res.Files = results
	return res, nil
}

func loadPrelude(fs *source.FileSet, opts Options, res *ExpandResult) (*preludeState, error) {
	st := &preludeState{
		session: rewrite.NewSession(decl.NewRegistry(opts.Policy), opts.Rewrite, diag.BagReporter{Bag: res.Bag}),
	}
	for _, path := range opts.Prelude {
		id, err := fs.LoadWithFlags(path, source.FilePrelude)
		if err != nil {
			return nil, fmt.Errorf("failed to load prelude %s: %w", path, err)
		}
		file := fs.Get(id)
		out := st.session.Prelude(file)
		st.decls = append(st.decls, out.Decls...)
		st.contents = append(st.contents, file.Content)
		log.Debugf("prelude %s: %d declaration(s)", path, len(out.Decls))
	}
	return st, nil
}

func loadFailure(file *source.File, display string, err error, opts Options) FileResult {
	fr := FileResult{Path: display, FileID: file.ID, Bag: diag.NewBag(opts.maxDiagnostics())}
	diag.NewError(diag.IOLoadFileError, source.Span{File: file.ID}, "failed to load file: "+err.Error()).
		Emit(diag.BagReporter{Bag: fr.Bag})
	return fr
}

func expandOne(file *source.File, display string, prelude *preludeState, opts Options) FileResult {
	fr := FileResult{
		Path:   display,
		FileID: file.ID,
		Bag:    diag.NewBag(opts.maxDiagnostics()),
	}

	var timer *observ.Timer
	if opts.EnableTimings {
		timer = observ.NewTimer()
	}

	var key CacheKey
	if opts.Cache != nil && !file.Flags.Has(source.FileVirtual) {
		key = Key(opts, prelude.contents, file.Content)
		endLookup := timer.Track("cache_lookup")
		var payload DiskPayload
		hit, err := opts.Cache.Get(key, &payload)
		if err != nil {
			cacheLog.Warningf("cache read for %s failed: %v", display, err)
		}
		endLookup(fmt.Sprintf("hit=%t", hit))
		if hit {
			fr.Output = payload.Output
			fr.Signatures = payload.Decls
			fr.Stats = payload.Stats
			fr.Cached = true
			fr.Timing = reportOf(timer)
			pipeline.Emit(opts.Progress, pipeline.Event{File: display, Stage: pipeline.StageLoad, Status: pipeline.StatusCached})
			return fr
		}
	}

	pipeline.Emit(opts.Progress, pipeline.Event{File: display, Stage: pipeline.StageExpand, Status: pipeline.StatusWorking})
	start := time.Now()
	endExpand := timer.Track("expand")

	session := rewrite.NewSession(prelude.session.Registry().Clone(), opts.Rewrite, diag.BagReporter{Bag: fr.Bag})
	out := session.Process(file)
	fr.Output = out.Output
	fr.Decls = out.Decls
	fr.Stats = out.Stats
	for _, d := range out.Decls {
		fr.Signatures = append(fr.Signatures, d.Signature())
	}
	endExpand(fmt.Sprintf("calls=%d decls=%d", out.Stats.Expanded, out.Stats.Declarations))
	if out.Repeats > 0 {
		log.Debugf("%s: %d repeated diagnostic(s) folded", display, out.Repeats)
	}

	status := pipeline.StatusDone
	if out.Errors > 0 {
		status = pipeline.StatusError
	}
	pipeline.Emit(opts.Progress, pipeline.Event{File: display, Stage: pipeline.StageExpand, Status: status, Elapsed: time.Since(start)})

	if opts.Cache != nil && !file.Flags.Has(source.FileVirtual) && fr.Bag.Len() == 0 {
		if err := opts.Cache.Put(key, &DiskPayload{Output: fr.Output, Decls: fr.Signatures, Stats: fr.Stats}); err != nil {
			cacheLog.Warningf("cache write for %s failed: %v", display, err)
		}
	}
	fr.Timing = reportOf(timer)
	return fr
}

func reportOf(t *observ.Timer) *observ.Report {
	if t == nil {
		return nil
	}
	r := t.Report()
	return &r
}

// WriteFile writes content to path in the encoding recorded by like (see
// source.Encode), keeping the mode of an existing file.
func WriteFile(path, content string, like source.FileFlags) error {
	data, err := source.Encode([]byte(content), like)
	if err != nil {
		return err
	}
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	return os.WriteFile(path, data, mode)
}
