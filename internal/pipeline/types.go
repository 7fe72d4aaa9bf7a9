package pipeline

import "time"

// Stage describes a phase a file moves through while it is rewritten.
type Stage string

const (
	// StageLoad reads the file from disk (or the cache).
	StageLoad Stage = "load"
	// StageExpand registers declarations and expands call sites.
	StageExpand Stage = "expand"
	// StageWrite writes the rewritten text.
	StageWrite Stage = "write"
)

// Status captures progress state within a stage.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusWorking Status = "working"
	StatusDone    Status = "done"
	// StatusCached marks a file whose result came from the disk cache.
	StatusCached Status = "cached"
	StatusError  Status = "error"
)

// Event reports progress for a file (or for the whole run when File is empty).
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events.
type ProgressSink interface {
	OnEvent(Event)
}

// Emit sends evt to sink, if there is one.
func Emit(sink ProgressSink, evt Event) {
	if sink == nil {
		return
	}
	sink.OnEvent(evt)
}

// EmitQueued marks every file as queued.
func EmitQueued(sink ProgressSink, files []string) {
	for _, f := range files {
		Emit(sink, Event{File: f, Stage: StageLoad, Status: StatusQueued})
	}
}

// stageOrder is the order stages run in and are reported in.
var stageOrder = [...]Stage{StageLoad, StageExpand, StageWrite}

// Timings sums wall time per stage over all files of a run. The zero value
// is ready to use.
type Timings struct {
	took [len(stageOrder)]time.Duration
	seen [len(stageOrder)]bool
}

func stageIndex(stage Stage) int {
	for i, s := range stageOrder {
		if s == stage {
			return i
		}
	}
	return -1
}

// Add accumulates dur into stage. Unknown stages are ignored.
func (t *Timings) Add(stage Stage, dur time.Duration) {
	i := stageIndex(stage)
	if t == nil || i < 0 {
		return
	}
	t.took[i] += dur
	t.seen[i] = true
}

// Has reports whether stage was recorded at least once.
func (t Timings) Has(stage Stage) bool {
	i := stageIndex(stage)
	return i >= 0 && t.seen[i]
}

// Duration returns the summed time of stage.
func (t Timings) Duration(stage Stage) time.Duration {
	if i := stageIndex(stage); i >= 0 {
		return t.took[i]
	}
	return 0
}

// Each calls fn for every recorded stage in run order.
func (t Timings) Each(fn func(Stage, time.Duration)) {
	for i, stage := range stageOrder {
		if t.seen[i] {
			fn(stage, t.took[i])
		}
	}
}
