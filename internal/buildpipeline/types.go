package buildpipeline

import "time"

// Stage describes a high-level pipeline phase.
type Stage string

const (
	// StageLoad reads and decodes the syntax tree.
	StageLoad Stage = "load"
	// StageSymbols builds the symbol table.
	StageSymbols Stage = "symbols"
	// StageMemory places global variables.
	StageMemory Stage = "memory"
	// StageHIR generates three-address code.
	StageHIR Stage = "hir"
	// StageOptimize runs the HIR passes.
	StageOptimize Stage = "optimize"
	// StageLIR lowers to register code.
	StageLIR Stage = "lir"
	// StageWrite emits the artifact to the output directory.
	StageWrite Stage = "write"
)

// Stages lists the per-unit stages in execution order.
var Stages = []Stage{StageLoad, StageSymbols, StageMemory, StageHIR, StageOptimize, StageLIR, StageWrite}

// Status captures progress state within a stage.
type Status string

const (
	// StatusQueued indicates the task is waiting to start.
	StatusQueued Status = "queued"
	// StatusWorking indicates the task is currently working.
	StatusWorking Status = "working"
	// StatusDone indicates the task is done.
	StatusDone Status = "done"
	// StatusCached indicates the result came from the artifact cache.
	StatusCached Status = "cached"
	// StatusError indicates the task encountered an error.
	StatusError Status = "error"
)

// Event reports progress for a unit (or for the overall build when File is empty).
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. Implementations must be safe for
// concurrent use; units compile in parallel.
type ProgressSink interface {
	OnEvent(Event)
}

// Timings holds stage durations.
type Timings struct {
	stages map[Stage]time.Duration
}

func (t *Timings) ensure() {
	if t.stages == nil {
		t.stages = make(map[Stage]time.Duration)
	}
}

// Set stores a duration for the given stage.
func (t *Timings) Set(stage Stage, dur time.Duration) {
	if t == nil {
		return
	}
	t.ensure()
	t.stages[stage] = dur
}

// Add accumulates dur onto stage.
func (t *Timings) Add(stage Stage, dur time.Duration) {
	if t == nil {
		return
	}
	t.ensure()
	t.stages[stage] += dur
}

// Merge adds every duration of other into t.
func (t *Timings) Merge(other Timings) {
	for stage, dur := range other.stages {
		t.Add(stage, dur)
	}
}

// Has reports whether a duration for stage is recorded.
func (t Timings) Has(stage Stage) bool {
	if t.stages == nil {
		return false
	}
	_, ok := t.stages[stage]
	return ok
}

// Duration returns the recorded duration for stage.
func (t Timings) Duration(stage Stage) time.Duration {
	if t.stages == nil {
		return 0
	}
	return t.stages[stage]
}

// Sum returns the sum of durations across the provided stages.
func (t Timings) Sum(stages ...Stage) time.Duration {
	if t.stages == nil {
		return 0
	}
	var total time.Duration
	for _, stage := range stages {
		total += t.stages[stage]
	}
	return total
}
