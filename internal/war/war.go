// Package war clusters a page's reverts into edit war episodes.
//
// Grouping uses chained adjacency: a revert joins the open cluster when
// its gap from the previous revert in that cluster is within the window.
// A long-running conflict may therefore span far more than one window
// in total, as long as no two consecutive reverts are further apart
// than the window. Clusters below the revert threshold are discarded.
package war

import (
	"sort"
	"time"

	"github.com/abelbrown/flashpoint/internal/revert"
)

// EditWar is a qualifying cluster of reverts on one page.
// Immutable after creation; re-running the grouper on the same revert
// sequence reproduces identical wars.
type EditWar struct {
	Page    string
	Start   time.Time
	End     time.Time
	Reverts []revert.Revert // time order
	Editors []string        // distinct, sorted
}

// Duration returns end minus start.
func (w *EditWar) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// Intervals returns the gaps between consecutive reverts, in minutes.
func (w *EditWar) Intervals() []float64 {
	if len(w.Reverts) < 2 {
		return nil
	}
	out := make([]float64, 0, len(w.Reverts)-1)
	for i := 1; i < len(w.Reverts); i++ {
		gap := w.Reverts[i].Revision.Timestamp.Sub(w.Reverts[i-1].Revision.Timestamp)
		out = append(out, gap.Minutes())
	}
	return out
}

// IntervalStats summarizes the revert cadence of a war.
type IntervalStats struct {
	AvgMinutes    float64
	MedianMinutes float64
	MinMinutes    float64
	MaxMinutes    float64
}

// Stats computes interval statistics. Zero value for single-revert wars
// (which cannot occur with threshold >= 2, but the method tolerates them).
func (w *EditWar) Stats() IntervalStats {
	intervals := w.Intervals()
	if len(intervals) == 0 {
		return IntervalStats{}
	}

	sorted := make([]float64, len(intervals))
	copy(sorted, intervals)
	sort.Float64s(sorted)

	var sum float64
	for _, v := range intervals {
		sum += v
	}

	return IntervalStats{
		AvgMinutes:    sum / float64(len(intervals)),
		MedianMinutes: sorted[len(sorted)/2],
		MinMinutes:    sorted[0],
		MaxMinutes:    sorted[len(sorted)-1],
	}
}

// Grouper clusters reverts into edit wars.
type Grouper struct {
	// Window is the maximum gap between consecutive reverts in a war.
	Window time.Duration

	// MinReverts is the minimum cluster size to qualify as a war.
	MinReverts int
}

// NewGrouper creates a Grouper with the given parameters.
func NewGrouper(window time.Duration, minReverts int) *Grouper {
	return &Grouper{Window: window, MinReverts: minReverts}
}

// Group clusters the reverts of one page, assumed to be in time order,
// and returns the qualifying edit wars in chronological order.
func (g *Grouper) Group(page string, reverts []revert.Revert) []EditWar {
	if len(reverts) == 0 {
		return nil
	}

	var wars []EditWar
	start := 0
	for i := 1; i <= len(reverts); i++ {
		if i < len(reverts) {
			gap := reverts[i].Revision.Timestamp.Sub(reverts[i-1].Revision.Timestamp)
			if gap <= g.Window {
				continue
			}
		}
		// Gap exceeded the window (or sequence ended): close the cluster
		if i-start >= g.MinReverts {
			wars = append(wars, newWar(page, reverts[start:i]))
		}
		start = i
	}

	return wars
}

func newWar(page string, cluster []revert.Revert) EditWar {
	reverts := make([]revert.Revert, len(cluster))
	copy(reverts, cluster)

	seen := make(map[string]bool)
	var editors []string
	for _, rv := range reverts {
		if !seen[rv.Revision.Editor] {
			seen[rv.Revision.Editor] = true
			editors = append(editors, rv.Revision.Editor)
		}
	}
	sort.Strings(editors)

	return EditWar{
		Page:    page,
		Start:   reverts[0].Revision.Timestamp,
		End:     reverts[len(reverts)-1].Revision.Timestamp,
		Reverts: reverts,
		Editors: editors,
	}
}
