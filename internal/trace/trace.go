package trace

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// ExecutionTrace is the canonical, deterministic record of a pipeline run.
//
// Invariants:
//   - Captures the PlanHash and the logical events of the run.
//   - Contains no timestamps, absolute durations, or error strings.
//   - Canonical ordering depends only on event content, never on emission order.
//
// The trace is observational only and never affects pipeline behavior.
type ExecutionTrace struct {
	PlanHash string
	Events   []TraceEvent
}

// TraceEventKind is the stable discriminator for TraceEvent.
// The string values are part of the canonical bytes; do not rename.
type TraceEventKind string

const (
	EventDirectoryCreated TraceEventKind = "DirectoryCreated"
	EventDirectoryExisted TraceEventKind = "DirectoryExisted"
	EventFileWritten      TraceEventKind = "FileWritten"
	EventFileReported     TraceEventKind = "FileReported"
	EventLineSkipped      TraceEventKind = "LineSkipped"
	EventNamesExtracted   TraceEventKind = "NamesExtracted"
	EventSummaryWritten   TraceEventKind = "SummaryWritten"
)

// TraceEvent is a single logical step.
type TraceEvent struct {
	Kind TraceEventKind

	// Subject is the path the event refers to, relative to the working
	// directory where possible. Required.
	Subject string

	// Reason is a stable reason code (e.g. "TooFewFields").
	Reason string

	// Line is a 1-based line number within Subject, or 0 when not applicable.
	Line int

	// Count is the number of rows or names the event produced, or 0.
	Count int
}

// Validate checks basic invariants and returns a descriptive error.
func (t *ExecutionTrace) Validate() error {
	if t == nil {
		return errors.New("trace is nil")
	}
	if t.PlanHash == "" {
		return errors.New("planHash is required")
	}
	for i := range t.Events {
		e := t.Events[i]
		if e.Kind == "" {
			return fmt.Errorf("events[%d].kind is required", i)
		}
		if e.Subject == "" {
			return fmt.Errorf("events[%d].subject is required for kind %q", i, e.Kind)
		}
		if e.Line < 0 || e.Count < 0 {
			return fmt.Errorf("events[%d] has negative line or count", i)
		}
	}
	return nil
}

// Canonicalize sorts events into their canonical order:
// (kindOrder, subject, line, reason, count).
//
// kindOrder follows pipeline stage order, so a canonical trace reads in the
// order the run progressed.
func (t *ExecutionTrace) Canonicalize() {
	if t == nil {
		return
	}
	sort.SliceStable(t.Events, func(i, j int) bool {
		a := t.Events[i]
		b := t.Events[j]

		if kindOrder(a.Kind) != kindOrder(b.Kind) {
			return kindOrder(a.Kind) < kindOrder(b.Kind)
		}
		if a.Subject != b.Subject {
			return a.Subject < b.Subject
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Reason != b.Reason {
			return a.Reason < b.Reason
		}
		return a.Count < b.Count
	})
}

func kindOrder(k TraceEventKind) int {
	switch k {
	case EventDirectoryCreated:
		return 10
	case EventDirectoryExisted:
		return 11
	case EventFileWritten:
		return 20
	case EventFileReported:
		return 30
	case EventLineSkipped:
		return 40
	case EventNamesExtracted:
		return 41
	case EventSummaryWritten:
		return 50
	default:
		return 1000
	}
}

// CanonicalJSON returns the canonical JSON encoding of the trace.
// It canonicalizes a copy of the trace to avoid mutating the caller's slice.
func (t ExecutionTrace) CanonicalJSON() ([]byte, error) {
	copyTrace := ExecutionTrace{PlanHash: t.PlanHash}
	copyTrace.Events = make([]TraceEvent, len(t.Events))
	copy(copyTrace.Events, t.Events)
	copyTrace.Canonicalize()
	if err := copyTrace.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(&copyTrace)
}

// Hash returns the deterministic trace hash (sha256 hex) of the canonical JSON bytes.
func (t ExecutionTrace) Hash() (string, error) {
	b, err := t.CanonicalJSON()
	if err != nil {
		return "", err
	}
	return ComputeTraceHash(b), nil
}

// MarshalJSON fixes field order. It does not sort; use CanonicalJSON for
// the canonical form.
func (t ExecutionTrace) MarshalJSON() ([]byte, error) {
	if t.PlanHash == "" {
		return nil, errors.New("planHash is required")
	}
	var buf bytes.Buffer
	buf.WriteByte('{')

	buf.WriteString("\"planHash\":")
	ph, _ := json.Marshal(t.PlanHash)
	buf.Write(ph)
	buf.WriteByte(',')

	buf.WriteString("\"events\":[")
	for i := range t.Events {
		if i > 0 {
			buf.WriteByte(',')
		}
		eb, err := json.Marshal(t.Events[i])
		if err != nil {
			return nil, err
		}
		buf.Write(eb)
	}
	buf.WriteByte(']')

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalJSON fixes field order and omits empty optional fields.
func (e TraceEvent) MarshalJSON() ([]byte, error) {
	if e.Kind == "" {
		return nil, errors.New("kind is required")
	}
	var buf bytes.Buffer
	buf.WriteByte('{')

	buf.WriteString("\"kind\":")
	kb, _ := json.Marshal(string(e.Kind))
	buf.Write(kb)

	buf.WriteString(",\"subject\":")
	sb, _ := json.Marshal(e.Subject)
	buf.Write(sb)

	if e.Reason != "" {
		buf.WriteString(",\"reason\":")
		rb, _ := json.Marshal(e.Reason)
		buf.Write(rb)
	}
	if e.Line != 0 {
		fmt.Fprintf(&buf, ",\"line\":%d", e.Line)
	}
	if e.Count != 0 {
		fmt.Fprintf(&buf, ",\"count\":%d", e.Count)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON accepts the canonical encoding produced by MarshalJSON.
func (e *TraceEvent) UnmarshalJSON(b []byte) error {
	var raw struct {
		Kind    string `json:"kind"`
		Subject string `json:"subject"`
		Reason  string `json:"reason"`
		Line    int    `json:"line"`
		Count   int    `json:"count"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*e = TraceEvent{Kind: TraceEventKind(raw.Kind), Subject: raw.Subject, Reason: raw.Reason, Line: raw.Line, Count: raw.Count}
	return nil
}

// UnmarshalJSON accepts the canonical encoding produced by MarshalJSON.
func (t *ExecutionTrace) UnmarshalJSON(b []byte) error {
	var raw struct {
		PlanHash string       `json:"planHash"`
		Events   []TraceEvent `json:"events"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*t = ExecutionTrace{PlanHash: raw.PlanHash, Events: raw.Events}
	return nil
}
