// Package revert classifies which revisions of a page are reverts.
//
// Two detection strategies run in a fixed precedence order: the comment
// keyword match first, then the content hash match against earlier
// revisions. A revision flagged by either yields exactly one Revert
// record; the Method field records whichever strategy fired first.
package revert

import (
	"strings"

	"github.com/abelbrown/flashpoint/internal/revision"
)

// Method identifies which strategy detected a revert.
type Method string

const (
	// MethodComment means the edit summary matched the revert vocabulary.
	MethodComment Method = "comment-keyword"

	// MethodHash means the content hash equals an earlier revision's,
	// i.e. the edit restored a prior state byte for byte.
	MethodHash Method = "content-hash"
)

// Revert is a derived fact: a revision that restores earlier content.
type Revert struct {
	Revision   revision.Revision
	RestoredID int64 // id of the restored revision, 0 if unknown (comment match only)
	Method     Method
}

// Keywords is the fixed revert vocabulary, matched case-insensitively
// as substrings of the edit summary. No NLP.
var Keywords = []string{"revert", "undo", "rv", "restore", "rollback"}

// strategy is one way of deciding whether a revision is a revert.
// Strategies see revisions in time order and may keep per-run state
// about earlier revisions via the observe callback.
type strategy interface {
	method() Method
	// match reports whether r is a revert and, when known, which
	// earlier revision it restored.
	match(r revision.Revision) (restoredID int64, ok bool)
	// observe is called for every revision after matching, first
	// revision included, so the strategy can index prior state.
	observe(r revision.Revision)
}

// commentStrategy flags revisions whose summary contains a keyword.
type commentStrategy struct{}

func (commentStrategy) method() Method { return MethodComment }

func (commentStrategy) match(r revision.Revision) (int64, bool) {
	if r.Comment == "" {
		return 0, false
	}
	comment := strings.ToLower(r.Comment)
	for _, kw := range Keywords {
		if strings.Contains(comment, kw) {
			return 0, true
		}
	}
	return 0, false
}

func (commentStrategy) observe(revision.Revision) {}

// hashStrategy flags revisions whose content hash equals that of a
// strictly earlier revision. The most recent matching ancestor wins,
// modelling "revert to last good state".
type hashStrategy struct {
	lastByHash map[string]int64 // hash -> most recent earlier revision id
}

func newHashStrategy() *hashStrategy {
	return &hashStrategy{lastByHash: make(map[string]int64)}
}

func (*hashStrategy) method() Method { return MethodHash }

func (s *hashStrategy) match(r revision.Revision) (int64, bool) {
	if r.SHA1 == "" {
		// Hidden or unavailable content never matches
		return 0, false
	}
	id, ok := s.lastByHash[r.SHA1]
	return id, ok
}

func (s *hashStrategy) observe(r revision.Revision) {
	if r.SHA1 != "" {
		s.lastByHash[r.SHA1] = r.ID
	}
}

// Detector finds reverts in a page history. Detection is deterministic
// and idempotent: the same history always yields the same Revert set.
type Detector struct{}

// NewDetector creates a Detector.
func NewDetector() *Detector { return &Detector{} }

// Detect scans the history in time order and returns its reverts.
// The first revision of a page is never a revert: there is no prior
// state to restore. Self-reverts are reported like any other revert.
func (d *Detector) Detect(h *revision.History) []Revert {
	if h.Len() < 2 {
		return nil
	}

	strategies := []strategy{commentStrategy{}, newHashStrategy()}

	var reverts []Revert
	for i := 0; i < h.Len(); i++ {
		r := h.At(i)

		if i > 0 {
			for _, s := range strategies {
				restored, ok := s.match(r)
				if !ok {
					continue
				}
				reverts = append(reverts, Revert{
					Revision:   r,
					RestoredID: restored,
					Method:     s.method(),
				})
				break // at most one Revert record per revision
			}
		}

		for _, s := range strategies {
			s.observe(r)
		}
	}

	return reverts
}
