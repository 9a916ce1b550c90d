package pipeline

import "fmt"

// Stage is the progress state of a run. A run moves strictly forward
// through the stages; there are no branches and no retries.
//
// StagePending is the state before anything has happened; StageInit means
// the working directory is in place.
type Stage string

const (
	StagePending    Stage = "PENDING"
	StageInit       Stage = "INIT"
	StagePlanned    Stage = "PLANNED"
	StageWritten    Stage = "WRITTEN"
	StageReported   Stage = "REPORTED"
	StageExtracted  Stage = "EXTRACTED"
	StageSummarized Stage = "SUMMARIZED"
)

// Stages lists every stage in order.
var Stages = []Stage{StagePending, StageInit, StagePlanned, StageWritten, StageReported, StageExtracted, StageSummarized}

// Index returns the stage's position in Stages, or -1 if unknown.
func (s Stage) Index() int {
	for i, st := range Stages {
		if st == s {
			return i
		}
	}
	return -1
}

// Next returns the successor of s. ok is false for the terminal stage and
// for unknown stages.
func (s Stage) Next() (next Stage, ok bool) {
	i := s.Index()
	if i < 0 || i == len(Stages)-1 {
		return "", false
	}
	return Stages[i+1], true
}

// IsTerminal reports whether s is the final stage.
func (s Stage) IsTerminal() bool {
	return s == StageSummarized
}

// Transition validates and applies a move from the expected prior stage
// to its immediate successor.
//
// The caller supplies from to make out-of-order calls observable; *cur is
// mutated if and only if the transition is valid.
func Transition(cur *Stage, from, to Stage) error {
	if cur == nil {
		return fmt.Errorf("nil stage")
	}
	if *cur != from {
		return fmt.Errorf("invalid transition: expected %s, got %s", from, *cur)
	}
	next, ok := from.Next()
	if !ok || next != to {
		return fmt.Errorf("disallowed transition: %s -> %s", from, to)
	}
	*cur = to
	return nil
}
