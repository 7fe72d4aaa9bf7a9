package fix

import (
	"bytes"
	"cmp"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"kwarg/internal/diag"
	"kwarg/internal/source"
)

// ErrNoFixes is returned when no fixes were applied.
var ErrNoFixes = errors.New("no applicable fixes found")

// ApplyMode determines the selection strategy.
type ApplyMode uint8

const (
	// ApplyModeOnce applies the first fix, preferring always-safe ones.
	ApplyModeOnce ApplyMode = iota
	// ApplyModeAll applies every fix whose applicability is allowed.
	ApplyModeAll
	// ApplyModeID applies the single fix with ApplyOptions.TargetID.
	ApplyModeID
)

type ApplyOptions struct {
	Mode     ApplyMode
	TargetID string
	// AllowHeuristics lets ApplyModeAll take safe-with-heuristics fixes,
	// such as renaming an unknown argument to its closest parameter.
	AllowHeuristics bool
	// DryRun computes the new contents without writing files.
	DryRun bool
}

type AppliedFix struct {
	ID            string
	Title         string
	Code          diag.Code
	Message       string
	Applicability diag.FixApplicability
	PrimaryPath   string
	EditCount     int
}

// SkippedFix is a fix that was not applied, with the reason.
type SkippedFix struct {
	ID     string
	Title  string
	Reason string
}

type FileChange struct {
	Path      string
	EditCount int
	// Original and Content are the file before and after the edits.
	Original []byte
	Content  []byte
}

type ApplyResult struct {
	Applied     []AppliedFix
	Skipped     []SkippedFix
	FileChanges []FileChange
}

type candidate struct {
	diag  diag.Diagnostic
	fix   diag.Fix
	order int
}

func (c candidate) skip(reason string) SkippedFix {
	return SkippedFix{ID: c.fix.ID, Title: c.fix.Title, Reason: reason}
}

// Apply collects fixes from diagnostics, selects some according to opts and
// applies them to the files in fs. Every edit is checked against the
// original content; a fix whose edits overlap an accepted one is skipped.
func Apply(fs *source.FileSet, diagnostics []diag.Diagnostic, opts ApplyOptions) (*ApplyResult, error) {
	result := &ApplyResult{}
	if fs == nil {
		return result, fmt.Errorf("fix: FileSet is nil")
	}

	candidates, skipped := gatherCandidates(diagnostics)
	result.Skipped = append(result.Skipped, skipped...)
	if len(candidates) == 0 {
		return result, ErrNoFixes
	}
	slices.SortStableFunc(candidates, compareCandidates)

	selected, skipped := selectCandidates(candidates, opts)
	result.Skipped = append(result.Skipped, skipped...)

	p := newPlan(fs, opts.DryRun)
	for _, cand := range selected {
		if reason := p.accept(cand.fix); reason != "" {
			result.Skipped = append(result.Skipped, cand.skip(reason))
			continue
		}
		result.Applied = append(result.Applied, AppliedFix{
			ID:            cand.fix.ID,
			Title:         cand.fix.Title,
			Code:          cand.diag.Code,
			Message:       cand.diag.Message,
			Applicability: cand.fix.Applicability,
			PrimaryPath:   p.path(cand.diag.Primary.File, "auto"),
			EditCount:     len(cand.fix.Edits),
		})
	}
	if len(result.Applied) == 0 {
		return result, ErrNoFixes
	}

	changes, err := p.commit()
	result.FileChanges = changes
	return result, err
}

// gatherCandidates lists every fix with edits. Fixes without an ID get one
// derived from the diagnostic code and position; repeated IDs are skipped.
func gatherCandidates(diagnostics []diag.Diagnostic) ([]candidate, []SkippedFix) {
	var cands []candidate
	var skips []SkippedFix
	seen := make(map[string]bool)

	for _, d := range diagnostics {
		for idx, f := range d.Fixes {
			c := candidate{diag: d, fix: f, order: len(cands)}
			if len(f.Edits) == 0 {
				skips = append(skips, c.skip("fix has no edits"))
				continue
			}
			if c.fix.ID == "" {
				c.fix.ID = fmt.Sprintf("%s-%d-%d-%d", d.Code.ID(), d.Primary.File, d.Primary.Start, idx)
			}
			if seen[c.fix.ID] {
				skips = append(skips, c.skip("duplicate fix id"))
				continue
			}
			seen[c.fix.ID] = true
			cands = append(cands, c)
		}
	}
	return cands, skips
}

// compareCandidates orders by primary location, then by the order the
// fixes were reported in.
func compareCandidates(a, b candidate) int {
	pa, pb := a.diag.Primary, b.diag.Primary
	return cmp.Or(
		cmp.Compare(pa.File, pb.File),
		cmp.Compare(pa.Start, pb.Start),
		cmp.Compare(pa.End, pb.End),
		cmp.Compare(a.order, b.order),
	)
}

func selectCandidates(candidates []candidate, opts ApplyOptions) ([]candidate, []SkippedFix) {
	switch opts.Mode {
	case ApplyModeID:
		i := slices.IndexFunc(candidates, func(c candidate) bool { return c.fix.ID == opts.TargetID })
		if i < 0 {
			return nil, []SkippedFix{{ID: opts.TargetID, Reason: "fix id not found"}}
		}
		return candidates[i : i+1], nil

	case ApplyModeAll:
		var selected []candidate
		var skipped []SkippedFix
		for _, c := range candidates {
			if allowed(c.fix.Applicability, opts.AllowHeuristics) {
				selected = append(selected, c)
			} else {
				skipped = append(skipped, c.skip(fmt.Sprintf("applicability is %s", c.fix.Applicability)))
			}
		}
		return selected, skipped

	case ApplyModeOnce:
		i := slices.IndexFunc(candidates, func(c candidate) bool {
			return c.fix.Applicability == diag.FixApplicabilityAlwaysSafe
		})
		return candidates[max(i, 0) : max(i, 0)+1], nil
	}
	return nil, nil
}

func allowed(app diag.FixApplicability, heuristics bool) bool {
	switch app {
	case diag.FixApplicabilityAlwaysSafe:
		return true
	case diag.FixApplicabilitySafeWithHeuristics:
		return heuristics
	}
	return false
}

// spansConflict reports edits that cannot both be applied.
func spansConflict(a, b diag.TextEdit) bool {
	return a.Span.Overlaps(b.Span)
}

// plan collects accepted edits per file, in original coordinates.
type plan struct {
	fs     *source.FileSet
	dryRun bool
	edits  map[source.FileID][]diag.TextEdit
}

func newPlan(fs *source.FileSet, dryRun bool) *plan {
	return &plan{fs: fs, dryRun: dryRun, edits: make(map[source.FileID][]diag.TextEdit)}
}

func (p *plan) path(id source.FileID, mode string) string {
	file, ok := p.fs.Lookup(id)
	if !ok {
		return ""
	}
	return file.FormatPath(mode, p.fs.BaseDir())
}

// accept adds every edit of f or none of them. A non-empty result is the
// reason f was rejected.
func (p *plan) accept(f diag.Fix) string {
	for i, e := range f.Edits {
		file, ok := p.fs.Lookup(e.Span.File)
		if !ok {
			return "edit targets an unknown file"
		}
		if file.Flags.Has(source.FileVirtual) && !p.dryRun {
			return "target file is virtual"
		}
		current, ok := file.Slice(e.Span)
		if !ok {
			return "edit span out of range"
		}
		if e.OldText != "" && current != e.OldText {
			return "existing text does not match expected content"
		}
		if slices.ContainsFunc(p.edits[e.Span.File], func(prev diag.TextEdit) bool { return spansConflict(prev, e) }) {
			return fmt.Sprintf("conflicts with previously applied edits in %s", p.path(e.Span.File, "auto"))
		}
		if slices.ContainsFunc(f.Edits[:i], func(prev diag.TextEdit) bool { return spansConflict(prev, e) }) {
			return "fix has overlapping edits"
		}
	}
	for _, e := range f.Edits {
		p.edits[e.Span.File] = append(p.edits[e.Span.File], e)
	}
	return ""
}

// commit renders every touched file and, unless this is a dry run, writes it.
func (p *plan) commit() ([]FileChange, error) {
	changes := make([]FileChange, 0, len(p.edits))
	for id, edits := range p.edits {
		file := p.fs.Get(id)
		content := render(file.Content, edits)
		if !p.dryRun {
			data, err := source.Encode(content, file.Flags)
			if err != nil {
				return changes, fmt.Errorf("encode %s: %w", file.Path, err)
			}
			if err := writeAtomic(file.Path, data); err != nil {
				return changes, fmt.Errorf("write %s: %w", file.Path, err)
			}
		}
		changes = append(changes, FileChange{
			Path:      p.path(id, "relative"),
			EditCount: len(edits),
			Original:  file.Content,
			Content:   content,
		})
	}
	slices.SortFunc(changes, func(a, b FileChange) int { return cmp.Compare(a.Path, b.Path) })
	return changes, nil
}

// render applies non-overlapping edits to content in a single pass.
// Insertions at the same offset keep the order they were accepted in.
func render(content []byte, edits []diag.TextEdit) []byte {
	sorted := slices.Clone(edits)
	slices.SortStableFunc(sorted, func(a, b diag.TextEdit) int { return cmp.Compare(a.Span.Start, b.Span.Start) })

	var out bytes.Buffer
	out.Grow(len(content))
	pos := uint32(0)
	for _, e := range sorted {
		out.Write(content[pos:e.Span.Start])
		out.WriteString(e.NewText)
		pos = e.Span.End
	}
	out.Write(content[pos:])
	return out.Bytes()
}

// writeAtomic replaces path through a temporary sibling, keeping the mode.
func writeAtomic(path string, content []byte) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
