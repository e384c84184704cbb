// Package revision holds the validated revision history of a single page.
// It is the entry point of the analysis pipeline: raw records from the
// Wikipedia client are normalized into an immutable, ascending-by-time
// sequence before any revert detection runs.
package revision

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Revision is a single edit to a page.
// Immutable once part of a History.
type Revision struct {
	ID        int64     // unique revision id within the wiki
	PageID    string    // page title the revision belongs to
	Timestamp time.Time // UTC, non-decreasing within a page
	Editor    string    // username or IP string
	Comment   string    // edit summary, may be empty
	SHA1      string    // content hash, may be empty if hidden
	ParentID  int64     // id of the parent revision, 0 for page creation
	Size      int       // page size in bytes after the edit
}

// IsBot reports whether the editor handle looks like an automated
// account. Used for reporting only, never to exclude an editor from
// detection.
func (r Revision) IsBot() bool {
	return strings.HasSuffix(strings.ToLower(r.Editor), "bot")
}

// MalformedRevisionError reports a revision record missing a required
// field. The whole page is rejected since downstream stages rely on
// complete records.
type MalformedRevisionError struct {
	Page   string
	Index  int    // position in the raw sequence
	Reason string // which field is missing
}

func (e *MalformedRevisionError) Error() string {
	return fmt.Sprintf("page %q: revision %d malformed: %s", e.Page, e.Index, e.Reason)
}

// DuplicateRevisionError reports two records sharing a revision id.
// Fatal for the page: revert detection looks revisions up by id.
type DuplicateRevisionError struct {
	Page string
	ID   int64
}

func (e *DuplicateRevisionError) Error() string {
	return fmt.Sprintf("page %q: duplicate revision id %d", e.Page, e.ID)
}

// History is the validated, time-ordered revision sequence of one page.
// Ties on timestamp are broken by revision id so ordering is total and
// re-running the pipeline is deterministic.
type History struct {
	page string
	revs []Revision
}

// NewHistory validates and orders raw revision records for a page.
// Records missing id, timestamp, or editor fail with
// *MalformedRevisionError; repeated ids fail with
// *DuplicateRevisionError. The input slice is not retained.
func NewHistory(page string, revs []Revision) (*History, error) {
	seen := make(map[int64]bool, len(revs))
	ordered := make([]Revision, 0, len(revs))

	for i, r := range revs {
		if r.ID == 0 {
			return nil, &MalformedRevisionError{Page: page, Index: i, Reason: "missing id"}
		}
		if r.Timestamp.IsZero() {
			return nil, &MalformedRevisionError{Page: page, Index: i, Reason: "missing timestamp"}
		}
		if r.Editor == "" {
			return nil, &MalformedRevisionError{Page: page, Index: i, Reason: "missing editor"}
		}
		if seen[r.ID] {
			return nil, &DuplicateRevisionError{Page: page, ID: r.ID}
		}
		seen[r.ID] = true
		r.PageID = page
		ordered = append(ordered, r)
	}

	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Timestamp.Equal(ordered[j].Timestamp) {
			return ordered[i].ID < ordered[j].ID
		}
		return ordered[i].Timestamp.Before(ordered[j].Timestamp)
	})

	return &History{page: page, revs: ordered}, nil
}

// Page returns the page title this history belongs to.
func (h *History) Page() string { return h.page }

// Len returns the number of revisions.
func (h *History) Len() int { return len(h.revs) }

// At returns the revision at position i in time order.
func (h *History) At(i int) Revision { return h.revs[i] }

// All returns a copy of the ordered revision sequence.
func (h *History) All() []Revision {
	out := make([]Revision, len(h.revs))
	copy(out, h.revs)
	return out
}

// Editors returns the distinct editor handles in first-seen order.
func (h *History) Editors() []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range h.revs {
		if !seen[r.Editor] {
			seen[r.Editor] = true
			out = append(out, r.Editor)
		}
	}
	return out
}
