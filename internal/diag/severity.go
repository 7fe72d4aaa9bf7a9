package diag

import "fmt"

// Severity orders diagnostics from informational to fatal; larger is worse.
type Severity uint8

const (
	SevInfo Severity = iota
	SevWarning
	SevError
)

var severityNames = [...]struct{ upper, lower string }{
	SevInfo:    {"INFO", "info"},
	SevWarning: {"WARNING", "warning"},
	SevError:   {"ERROR", "error"},
}

func (s Severity) String() string {
	if int(s) < len(severityNames) {
		return severityNames[s].upper
	}
	return "UNKNOWN"
}

// Label is the lower-case form used in short and golden listings.
func (s Severity) Label() string {
	if int(s) < len(severityNames) {
		return severityNames[s].lower
	}
	return "info"
}

// ParseSeverity accepts either spelling produced by String or Label.
func ParseSeverity(name string) (Severity, error) {
	for sev, n := range severityNames {
		if name == n.upper || name == n.lower {
			return Severity(sev), nil
		}
	}
	return SevInfo, fmt.Errorf("unknown severity %q", name)
}
