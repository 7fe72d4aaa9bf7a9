package diagfmt

import (
	"errors"
	"fmt"
	"strings"

	"fortio.org/safecast"

	"kwarg/internal/diag"
	"kwarg/internal/source"
)

var errStaleEdit = errors.New("edit no longer matches the source")

// fixEditPreview holds the whole lines an edit touches, before and after it
// is applied.
type fixEditPreview struct {
	before []string
	after  []string
}

func buildFixEditPreview(fs *source.FileSet, edit diag.TextEdit) (fixEditPreview, error) {
	if fs == nil {
		return fixEditPreview{}, fmt.Errorf("nil FileSet")
	}
	file, ok := fs.Lookup(edit.Span.File)
	if !ok {
		return fixEditPreview{}, fmt.Errorf("file %d not found in FileSet", edit.Span.File)
	}
	current, ok := file.Slice(edit.Span)
	if !ok {
		return fixEditPreview{}, fmt.Errorf("edit span %d..%d out of range", edit.Span.Start, edit.Span.End)
	}
	if edit.OldText != "" && current != edit.OldText {
		return fixEditPreview{}, errStaleEdit
	}
	size, err := safecast.Conv[uint32](len(file.Content))
	if err != nil {
		return fixEditPreview{}, fmt.Errorf("len file content overflow: %w", err)
	}

	from, to := lineBlock(file, edit.Span, size)
	var after strings.Builder
	after.Write(file.Content[from:edit.Span.Start])
	after.WriteString(edit.NewText)
	after.Write(file.Content[edit.Span.End:to])

	return fixEditPreview{
		before: previewLines(string(file.Content[from:to])),
		after:  previewLines(after.String()),
	}, nil
}

// lineBlock widens span to the start of its first line and the end (newline
// included) of its last line.
func lineBlock(f *source.File, span source.Span, size uint32) (from, to uint32) {
	from, to = 0, size
	for _, nl := range f.LineIdx {
		if nl < span.Start {
			from = nl + 1
			continue
		}
		if nl >= span.End {
			to = nl + 1
			break
		}
	}
	return from, to
}

// previewLines drops the final newline so a block never ends in an empty
// line; interior blank lines are kept.
func previewLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}
