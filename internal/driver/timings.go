package driver

import (
	"encoding/json"
	"fmt"

	"kwarg/internal/diag"
	"kwarg/internal/observ"
	"kwarg/internal/source"
)

// timingPayload is the JSON carried in the note of an OBS6001 diagnostic.
// Kind is "file" for one file and "run" for the sum over a directory.
type timingPayload struct {
	Kind    string               `json:"kind"`
	Path    string               `json:"path,omitempty"`
	TotalMS float64              `json:"total_ms"`
	Phases  []observ.PhaseReport `json:"phases"`
}

func newTimingPayload(kind, path string, r observ.Report) timingPayload {
	return timingPayload{Kind: kind, Path: path, TotalMS: r.TotalMS, Phases: r.Phases}
}

// appendTimingDiagnostic records payload as an info diagnostic at the start
// of file. Timing entries bypass the bag's limit.
func appendTimingDiagnostic(bag *diag.Bag, file source.FileID, payload timingPayload) {
	if bag == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	msg := fmt.Sprintf("timings (%s): total %.2f ms", payload.Kind, payload.TotalMS)
	if payload.Path != "" {
		msg += ", " + payload.Path
	}
	at := source.Span{File: file}
	bag.Push(*diag.New(diag.SevInfo, diag.ObsTimings, at, msg).WithNote(at, string(data)))
}
