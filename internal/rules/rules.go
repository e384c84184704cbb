// Package rules flags three-revert-rule violations: more than three
// reverts by one editor on one page inside a rolling 24-hour window.
package rules

import (
	"sort"
	"time"

	"github.com/abelbrown/flashpoint/internal/revert"
)

// Violation records one editor exceeding the revert limit on a page.
// A violation is flagged at the (max+1)th revert within the window and
// at every subsequent revert that still lands inside one.
type Violation struct {
	Editor      string
	Page        string
	WindowStart time.Time
	WindowEnd   time.Time
	Reverts     int // reverts inside the flagged window
}

// Detector implements the sliding-window three-revert-rule check.
type Detector struct {
	// Window is the rolling period, 24h for the canonical rule.
	Window time.Duration

	// MaxReverts is the number of reverts allowed inside the window
	// before violations are flagged. 3 for the canonical rule.
	MaxReverts int
}

// NewDetector creates a Detector with the given policy parameters.
func NewDetector(window time.Duration, maxReverts int) *Detector {
	return &Detector{Window: window, MaxReverts: maxReverts}
}

// Detect scans one page's reverts and returns violations in time order.
// An empty result is the expected case, not an error.
func (d *Detector) Detect(page string, reverts []revert.Revert) []Violation {
	byEditor := make(map[string][]time.Time)
	for _, rv := range reverts {
		byEditor[rv.Revision.Editor] = append(byEditor[rv.Revision.Editor], rv.Revision.Timestamp)
	}

	// Deterministic editor order for reproducible output
	editors := make([]string, 0, len(byEditor))
	for e := range byEditor {
		editors = append(editors, e)
	}
	sort.Strings(editors)

	var violations []Violation
	for _, editor := range editors {
		times := byEditor[editor]
		sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })

		// Violation at revert i when the revert MaxReverts positions
		// earlier is still within the window: that makes MaxReverts+1
		// reverts inside it.
		for i := d.MaxReverts; i < len(times); i++ {
			start := times[i-d.MaxReverts]
			if times[i].Sub(start) <= d.Window {
				violations = append(violations, Violation{
					Editor:      editor,
					Page:        page,
					WindowStart: start,
					WindowEnd:   times[i],
					Reverts:     d.MaxReverts + 1,
				})
			}
		}
	}

	sort.Slice(violations, func(i, j int) bool {
		if !violations[i].WindowEnd.Equal(violations[j].WindowEnd) {
			return violations[i].WindowEnd.Before(violations[j].WindowEnd)
		}
		return violations[i].Editor < violations[j].Editor
	})

	return violations
}
