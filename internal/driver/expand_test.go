package driver

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kwarg/internal/decl"
	"kwarg/internal/diag"
	"kwarg/internal/pipeline"
	"kwarg/internal/rewrite"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func defaultOptions() Options {
	return Options{Rewrite: rewrite.DefaultOptions(), Policy: decl.PolicyOverwrite}
}

func TestExpandSource(t *testing.T) {
	res, err := ExpandSource(context.Background(), "<stdin>", []byte("declare f(a, b = 2);\nf!(1);\n"), defaultOptions())
	require.NoError(t, err)
	require.Len(t, res.Files, 1)

	fr := res.Files[0]
	assert.Equal(t, "\nf(1, 2);\n", fr.Output)
	assert.Equal(t, []string{"f(a, b = 2)"}, fr.Signatures)
	assert.False(t, fr.Failed())
	assert.False(t, res.HasErrors())
	assert.Equal(t, 1, res.Stats.Expanded)
}

func TestExpandSourceReportsErrors(t *testing.T) {
	res, err := ExpandSource(context.Background(), "bad.kw", []byte("declare f(a);\nf!();\n"), defaultOptions())
	require.NoError(t, err)
	require.True(t, res.HasErrors())
	assert.Equal(t, diag.ExpMissingArgument, res.Bag.Items()[0].Code)
	assert.Contains(t, res.Files[0].Output, rewrite.DefaultPlaceholder)
}

func TestExpandDirWithPrelude(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "lib", "decls.kwp"), "declare plot(x, y = 0, color = \"red\");\n")
	writeFile(t, filepath.Join(root, "src", "a.kw"), "plot!(1);\n")
	writeFile(t, filepath.Join(root, "src", "b.kw"), "declare local(v = 9);\nplot!(2, color = \"blue\"); local!();\n")
	writeFile(t, filepath.Join(root, "src", "c.kw"), "local!();\n")
	writeFile(t, filepath.Join(root, "src", ".hidden", "d.kw"), "plot!(3);\n")
	writeFile(t, filepath.Join(root, "src", "notes.txt"), "plot!(4);\n")

	rec := &pipeline.RecordingSink{}
	opts := defaultOptions()
	opts.Prelude = []string{filepath.Join(root, "lib", "decls.kwp")}
	opts.Progress = rec
	opts.Jobs = 2

	res, err := ExpandDir(context.Background(), filepath.Join(root, "src"), opts)
	require.NoError(t, err)
	require.Len(t, res.Files, 3)

	assert.Equal(t, "a.kw", res.Files[0].Path)
	assert.Equal(t, "plot(1, 0, \"red\");\n", res.Files[0].Output)
	assert.Equal(t, "\nplot(2, 0, \"blue\"); local(9);\n", res.Files[1].Output)

	// declarations do not leak between files; unknown names are left alone
	assert.Equal(t, "local!();\n", res.Files[2].Output)
	assert.False(t, res.HasErrors())
	require.Len(t, res.PreludeDecls, 1)
	assert.Equal(t, "plot", res.PreludeDecls[0].Name)

	var queued, finished int
	for _, ev := range rec.Events() {
		switch ev.Status {
		case pipeline.StatusQueued:
			queued++
		case pipeline.StatusDone, pipeline.StatusError:
			finished++
		}
	}
	assert.Equal(t, 3, queued)
	assert.Equal(t, 3, finished)
}

func TestExpandFileMissing(t *testing.T) {
	_, err := ExpandFile(context.Background(), filepath.Join(t.TempDir(), "nope.kw"), defaultOptions())
	require.Error(t, err)
}

func TestExpandDirCancelled(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.kw"), "x\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ExpandDir(ctx, root, defaultOptions())
	require.ErrorIs(t, err, context.Canceled)
}

func TestExpandWithCache(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "main.kw")
	writeFile(t, target, "declare g(a = 1);\ng!();\n")

	cache, err := OpenDiskCache("kwarg", filepath.Join(root, "cache"))
	require.NoError(t, err)
	opts := defaultOptions()
	opts.Cache = cache

	first, err := ExpandFile(context.Background(), target, opts)
	require.NoError(t, err)
	require.False(t, first.Files[0].Cached)

	second, err := ExpandFile(context.Background(), target, opts)
	require.NoError(t, err)
	require.True(t, second.Files[0].Cached)
	assert.Equal(t, first.Files[0].Output, second.Files[0].Output)
	assert.Equal(t, first.Files[0].Signatures, second.Files[0].Signatures)
	assert.Equal(t, first.Files[0].Stats, second.Files[0].Stats)

	opts.Rewrite.Placeholder = "/* other */"
	third, err := ExpandFile(context.Background(), target, opts)
	require.NoError(t, err)
	assert.False(t, third.Files[0].Cached, "option change must miss")
}

func TestExpandTimings(t *testing.T) {
	opts := defaultOptions()
	opts.EnableTimings = true
	res, err := ExpandSource(context.Background(), "t.kw", []byte("x\n"), opts)
	require.NoError(t, err)
	require.NotNil(t, res.Files[0].Timing)
	require.Equal(t, 1, res.Bag.Len())
	d := res.Bag.Items()[0]
	assert.Equal(t, diag.ObsTimings, d.Code)
	assert.Equal(t, diag.SevInfo, d.Severity)
	require.Len(t, d.Notes, 1)
	assert.Contains(t, d.Notes[0].Msg, `"phases"`)
	assert.True(t, res.Timings.Has(pipeline.StageExpand))
}

func TestExpandDirTimingsAddRunTotal(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.kw"), "x\n")
	writeFile(t, filepath.Join(root, "b.kw"), "y\n")

	opts := defaultOptions()
	opts.EnableTimings = true
	res, err := ExpandDir(context.Background(), root, opts)
	require.NoError(t, err)
	require.Len(t, res.Files, 2)

	var kinds []string
	for _, d := range res.Bag.Items() {
		require.Equal(t, diag.ObsTimings, d.Code)
		require.Len(t, d.Notes, 1)
		var payload timingPayload
		require.NoError(t, json.Unmarshal([]byte(d.Notes[0].Msg), &payload))
		kinds = append(kinds, payload.Kind)
	}
	assert.Equal(t, []string{"file", "file", "run"}, kinds)
	assert.InDelta(t, res.Files[0].Timing.TotalMS+res.Files[1].Timing.TotalMS, res.Timing.TotalMS, 1e-9)
}

func TestListFilesHonoursExclude(t *testing.T) {
	root := t.TempDir()
	for _, rel := range []string{"a.kw", "b_gen.kw", "vendor/c.kw", "sub/d.kw", "sub/e.txt", ".hidden/f.kw"} {
		writeFile(t, filepath.Join(root, filepath.FromSlash(rel)), "x\n")
	}

	opts := defaultOptions()
	opts.Exclude = []string{"vendor", "*_gen.kw"}
	files, err := ListFiles(root, opts)
	require.NoError(t, err)

	var rel []string
	for _, f := range files {
		r, err := filepath.Rel(root, f)
		require.NoError(t, err)
		rel = append(rel, filepath.ToSlash(r))
	}
	assert.Equal(t, []string{"a.kw", "sub/d.kw"}, rel)
}

func TestResolvePrelude(t *testing.T) {
	t.Setenv(PreludeEnv, "a.kw"+string(os.PathListSeparator)+" "+string(os.PathListSeparator)+"b.kw")
	got := ResolvePrelude([]string{"b.kw", "./a.kw", "c.kw"})
	assert.Equal(t, []string{"b.kw", "a.kw", "c.kw"}, got)
}
