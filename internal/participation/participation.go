// Package participation aggregates editor behavior across all edit wars
// in an analysis run. The new/repeat split is corpus-wide: an editor who
// shows up in one war on page A and one on page B is a repeat editor.
//
// This is a pure reduction over completed per-page results, never
// mutable state touched during per-page processing.
package participation

import (
	"sort"

	"github.com/abelbrown/flashpoint/internal/war"
)

// EditorActivity counts one editor's presence across the corpus.
type EditorActivity struct {
	Editor string
	Wars   int // distinct edit wars the editor appeared in
}

// Summary is the corpus-wide participation breakdown.
type Summary struct {
	TotalWars     int
	UniqueEditors int

	// Editors-per-war statistics
	AvgEditorsPerWar float64
	MinEditorsPerWar int
	MaxEditorsPerWar int

	// NewEditors appear in exactly one war; RepeatEditors in two or
	// more. The two always partition the full editor set.
	NewEditors    int
	RepeatEditors int

	// MostActive lists editors by war count descending, ties broken
	// by name ascending for reproducible reports.
	MostActive []EditorActivity
}

// NewRepeatRatio returns new/repeat, or 0 when there are no repeat
// editors.
func (s Summary) NewRepeatRatio() float64 {
	if s.RepeatEditors == 0 {
		return 0
	}
	return float64(s.NewEditors) / float64(s.RepeatEditors)
}

// topN caps the most-active list.
const topN = 10

// Aggregate reduces all wars from all analyzed pages into a Summary.
func Aggregate(wars []war.EditWar) Summary {
	s := Summary{TotalWars: len(wars)}
	if len(wars) == 0 {
		return s
	}

	warCounts := make(map[string]int)
	totalEditors := 0
	s.MinEditorsPerWar = len(wars[0].Editors)

	for _, w := range wars {
		n := len(w.Editors)
		totalEditors += n
		if n < s.MinEditorsPerWar {
			s.MinEditorsPerWar = n
		}
		if n > s.MaxEditorsPerWar {
			s.MaxEditorsPerWar = n
		}
		for _, e := range w.Editors {
			warCounts[e]++ // Editors is already distinct per war
		}
	}

	s.UniqueEditors = len(warCounts)
	s.AvgEditorsPerWar = float64(totalEditors) / float64(len(wars))

	active := make([]EditorActivity, 0, len(warCounts))
	for editor, count := range warCounts {
		if count == 1 {
			s.NewEditors++
		} else {
			s.RepeatEditors++
		}
		active = append(active, EditorActivity{Editor: editor, Wars: count})
	}

	sort.Slice(active, func(i, j int) bool {
		if active[i].Wars != active[j].Wars {
			return active[i].Wars > active[j].Wars
		}
		return active[i].Editor < active[j].Editor
	})
	if len(active) > topN {
		active = active[:topN]
	}
	s.MostActive = active

	return s
}
