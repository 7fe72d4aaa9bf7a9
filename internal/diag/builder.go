package diag

import (
	"fmt"

	"kwarg/internal/source"
)

// New starts a diagnostic; chain WithNote and WithFix, then Emit or add it
// to a Bag.
func New(sev Severity, code Code, primary source.Span, msg string) *Diagnostic {
	return &Diagnostic{Severity: sev, Code: code, Primary: primary, Message: msg}
}

func NewError(code Code, primary source.Span, msg string) *Diagnostic {
	return New(SevError, code, primary, msg)
}

// Errorf is NewError with a formatted message.
func Errorf(code Code, primary source.Span, format string, args ...any) *Diagnostic {
	return NewError(code, primary, fmt.Sprintf(format, args...))
}

func (d *Diagnostic) WithNote(sp source.Span, msg string) *Diagnostic {
	d.Notes = append(d.Notes, Note{Span: sp, Msg: msg})
	return d
}

func (d *Diagnostic) WithNotef(sp source.Span, format string, args ...any) *Diagnostic {
	return d.WithNote(sp, fmt.Sprintf(format, args...))
}

func (d *Diagnostic) WithFix(fix Fix) *Diagnostic {
	d.Fixes = append(d.Fixes, fix)
	return d
}

// Emit forwards d to r. Either may be nil.
func (d *Diagnostic) Emit(r Reporter) {
	if r == nil || d == nil {
		return
	}
	r.Report(d.Code, d.Severity, d.Primary, d.Message, d.Notes, d.Fixes)
}
