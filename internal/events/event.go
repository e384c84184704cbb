// Package events provides structured run diagnostics for Flashpoint.
//
// Events are typed structs serialized as JSONL lines. The Logger writes
// events asynchronously via a buffered channel and background drain
// goroutine, so emitting never blocks the analysis pipeline.
package events

import (
	"encoding/json"
	"time"
)

// Level defines event severity for filtering.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Kind identifies the category of an event.
// Dot-delimited: "<subsystem>.<action>".
type Kind string

const (
	// Run events
	KindRunStart    Kind = "run.start"
	KindRunComplete Kind = "run.complete"

	// Per-page pipeline events
	KindPageAnalyzed Kind = "page.analyzed"
	KindPageSkipped  Kind = "page.skipped"

	// Store events
	KindStoreSave  Kind = "store.save"
	KindStoreError Kind = "store.error"

	// System events
	KindError Kind = "sys.error"
)

// Event is the universal diagnostics record. Every field except Kind and
// Time is optional. Serialized as a single JSONL line.
type Event struct {
	Time      time.Time     `json:"t"`
	Level     Level         `json:"level,omitempty"`
	Kind      Kind          `json:"kind"`
	SessionID string        `json:"session_id,omitempty"` // random hex, same for entire run
	Page      string        `json:"page,omitempty"`
	Dur       time.Duration `json:"-"`                // not serialized directly
	DurMs     float64       `json:"dur_ms,omitempty"` // computed from Dur at marshal time
	Count     int           `json:"count,omitempty"`
	Reverts   int           `json:"reverts,omitempty"`
	Wars      int           `json:"wars,omitempty"`
	Err       string        `json:"err,omitempty"`
	Msg       string        `json:"msg,omitempty"` // free text
}

// MarshalJSON implements json.Marshaler, converting Dur to DurMs.
func (e Event) MarshalJSON() ([]byte, error) {
	type Alias Event
	a := struct {
		Alias
	}{Alias: Alias(e)}
	if e.Dur > 0 {
		a.DurMs = float64(e.Dur) / float64(time.Millisecond)
	}
	return json.Marshal(a)
}
