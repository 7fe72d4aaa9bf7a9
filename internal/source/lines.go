package source

import "slices"

// newlineOffsets records the offset of every '\n'.
func newlineOffsets(content []byte) []uint32 {
	out := make([]uint32, 0, len(content)/32+1)
	for i, b := range content {
		if b == '\n' {
			out = append(out, uint32(i))
		}
	}
	return out
}

// Position maps a byte offset to its 1-based line and column. A newline
// belongs to the line it ends.
func (f *File) Position(off uint32) LineCol {
	line, _ := slices.BinarySearch(f.LineIdx, off)
	col := off + 1
	if line > 0 {
		col = off - f.LineIdx[line-1]
	}
	return LineCol{Line: uint32(line + 1), Col: col}
}

// lineBounds returns the byte range of line n (1-based) without its newline.
func (f *File) lineBounds(n uint32) (start, end int, ok bool) {
	if n == 0 || int(n) > len(f.LineIdx)+1 {
		return 0, 0, false
	}
	if n > 1 {
		start = int(f.LineIdx[n-2]) + 1
	}
	end = len(f.Content)
	if int(n) <= len(f.LineIdx) {
		end = int(f.LineIdx[n-1])
	}
	return start, end, start <= end
}

// GetLine returns line n (1-based) without its terminating newline, or ""
// past the end of the file.
func (f *File) GetLine(n uint32) string {
	start, end, ok := f.lineBounds(n)
	if !ok {
		return ""
	}
	return string(f.Content[start:end])
}
