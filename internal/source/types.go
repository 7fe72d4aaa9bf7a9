package source

type (
	// FileID uniquely identifies a source file within a FileSet.
	FileID uint32
	// FileFlags encodes metadata about a source file.
	FileFlags uint8
)

const (
	// FileVirtual marks content that did not come from disk (tests, stdin, editor buffers).
	FileVirtual FileFlags = 1 << iota
	FileHadBOM
	FileNormalizedCRLF
	// FileTranscoded marks UTF-16 input converted to UTF-8 on load;
	// FileBigEndian says which byte order it had.
	FileTranscoded
	FileBigEndian
	// FilePrelude marks declaration-only files loaded ahead of the unit being rewritten.
	FilePrelude
)

// File captures metadata and content for a single source file.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	LineIdx []uint32
	Hash    [32]byte
	Flags   FileFlags
}

// Has reports whether every bit of flag is set.
func (flags FileFlags) Has(flag FileFlags) bool {
	return flags&flag == flag
}

// Slice returns the text under span, or false when span belongs to another
// file or runs past the content.
func (f *File) Slice(span Span) (string, bool) {
	if span.File != f.ID || span.Start > span.End || int(span.End) > len(f.Content) {
		return "", false
	}
	return string(f.Content[span.Start:span.End]), true
}

// LineCol represents a human-readable position in a source file.
type LineCol struct {
	Line uint32 // 1-based
	Col  uint32 // 1-based, in bytes
}
