package source

import (
	"bytes"
	"fmt"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16BE = []byte{0xFE, 0xFF}
	bomUTF16LE = []byte{0xFF, 0xFE}
)

// Decode turns raw file bytes into the UTF-8, LF-terminated text the lexer
// works on. UTF-16 input is accepted only with a byte order mark. The
// returned flags say what was changed.
func Decode(raw []byte) ([]byte, FileFlags, error) {
	var flags FileFlags
	content := raw
	switch {
	case bytes.HasPrefix(raw, bomUTF8):
		content = raw[len(bomUTF8):]
		flags |= FileHadBOM
	case bytes.HasPrefix(raw, bomUTF16BE), bytes.HasPrefix(raw, bomUTF16LE):
		dec := unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder()
		out, _, err := transform.Bytes(dec, raw)
		if err != nil {
			return nil, 0, fmt.Errorf("decode utf-16: %w", err)
		}
		content = out
		flags |= FileHadBOM | FileTranscoded
		if bytes.HasPrefix(raw, bomUTF16BE) {
			flags |= FileBigEndian
		}
	}
	if bytes.Contains(content, []byte("\r\n")) {
		content = bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
		flags |= FileNormalizedCRLF
	}
	return content, flags, nil
}

// Encode is the inverse of Decode: it restores the line endings, BOM and
// encoding that flags recorded, so a rewritten file keeps its original form.
func Encode(text []byte, flags FileFlags) ([]byte, error) {
	out := text
	if flags.Has(FileNormalizedCRLF) {
		out = bytes.ReplaceAll(out, []byte("\n"), []byte("\r\n"))
	}
	switch {
	case flags.Has(FileTranscoded):
		order := unicode.LittleEndian
		if flags.Has(FileBigEndian) {
			order = unicode.BigEndian
		}
		enc := unicode.UTF16(order, unicode.UseBOM).NewEncoder()
		encoded, _, err := transform.Bytes(enc, out)
		if err != nil {
			return nil, fmt.Errorf("encode utf-16: %w", err)
		}
		return encoded, nil
	case flags.Has(FileHadBOM):
		return append(append([]byte(nil), bomUTF8...), out...), nil
	}
	return out, nil
}
