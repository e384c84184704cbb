package revert

import (
	"testing"
	"time"

	"github.com/abelbrown/flashpoint/internal/revision"
)

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func history(t *testing.T, revs []revision.Revision) *revision.History {
	t.Helper()
	h, err := revision.NewHistory("Sandbox", revs)
	if err != nil {
		t.Fatalf("building history: %v", err)
	}
	return h
}

func TestFirstRevisionNeverARevert(t *testing.T) {
	h := history(t, []revision.Revision{
		{ID: 1, Timestamp: t0, Editor: "alice", Comment: "Reverted vandalism"},
	})

	reverts := NewDetector().Detect(h)
	if len(reverts) != 0 {
		t.Errorf("first revision flagged as revert: %v", reverts)
	}
}

func TestCommentKeywordDetection(t *testing.T) {
	cases := []struct {
		comment string
		want    bool
	}{
		{"Reverted edits by 1.2.3.4", true},
		{"Undo revision 12345", true},
		{"rv vandalism", true},
		{"restore sourced version", true},
		{"rollback to stable", true},
		{"add infobox", false},
		{"", false},
	}

	for _, tc := range cases {
		h := history(t, []revision.Revision{
			{ID: 1, Timestamp: t0, Editor: "alice"},
			{ID: 2, Timestamp: t0.Add(time.Minute), Editor: "bob", Comment: tc.comment},
		})

		reverts := NewDetector().Detect(h)
		got := len(reverts) == 1
		if got != tc.want {
			t.Errorf("comment %q: detected=%v, want %v", tc.comment, got, tc.want)
		}
		if got && reverts[0].Method != MethodComment {
			t.Errorf("comment %q: method %q, want %q", tc.comment, reverts[0].Method, MethodComment)
		}
	}
}

func TestHashDetectionRestoresMostRecentMatch(t *testing.T) {
	// Hash "aaa" appears at revisions 1 and 3; revision 4 restores it.
	// The most recent matching ancestor (3) must win, not the earliest.
	h := history(t, []revision.Revision{
		{ID: 1, Timestamp: t0, Editor: "alice", SHA1: "aaa"},
		{ID: 2, Timestamp: t0.Add(time.Minute), Editor: "bob", SHA1: "bbb"},
		{ID: 3, Timestamp: t0.Add(2 * time.Minute), Editor: "alice", SHA1: "aaa"},
		{ID: 4, Timestamp: t0.Add(3 * time.Minute), Editor: "carol", SHA1: "bbb"},
	})

	reverts := NewDetector().Detect(h)
	if len(reverts) != 2 {
		t.Fatalf("expected 2 reverts, got %d", len(reverts))
	}

	// Revision 3 restores revision 1's content
	if reverts[0].Revision.ID != 3 || reverts[0].RestoredID != 1 {
		t.Errorf("expected rev 3 restoring 1, got rev %d restoring %d",
			reverts[0].Revision.ID, reverts[0].RestoredID)
	}
	// Revision 4 restores revision 2's content
	if reverts[1].Revision.ID != 4 || reverts[1].RestoredID != 2 {
		t.Errorf("expected rev 4 restoring 2, got rev %d restoring %d",
			reverts[1].Revision.ID, reverts[1].RestoredID)
	}
	for _, rv := range reverts {
		if rv.Method != MethodHash {
			t.Errorf("expected content-hash method, got %q", rv.Method)
		}
	}
}

func TestCommentTakesPrecedenceOverHash(t *testing.T) {
	h := history(t, []revision.Revision{
		{ID: 1, Timestamp: t0, Editor: "alice", SHA1: "aaa"},
		{ID: 2, Timestamp: t0.Add(time.Minute), Editor: "bob", SHA1: "bbb"},
		{ID: 3, Timestamp: t0.Add(2 * time.Minute), Editor: "alice", Comment: "revert", SHA1: "aaa"},
	})

	reverts := NewDetector().Detect(h)
	if len(reverts) != 1 {
		t.Fatalf("expected 1 revert, got %d", len(reverts))
	}
	if reverts[0].Method != MethodComment {
		t.Errorf("both methods apply: expected comment precedence, got %q", reverts[0].Method)
	}
}

func TestEmptyHashNeverMatches(t *testing.T) {
	h := history(t, []revision.Revision{
		{ID: 1, Timestamp: t0, Editor: "alice"},
		{ID: 2, Timestamp: t0.Add(time.Minute), Editor: "bob"},
		{ID: 3, Timestamp: t0.Add(2 * time.Minute), Editor: "carol"},
	})

	if reverts := NewDetector().Detect(h); len(reverts) != 0 {
		t.Errorf("revisions without hashes matched each other: %v", reverts)
	}
}

func TestSelfRevertsCounted(t *testing.T) {
	h := history(t, []revision.Revision{
		{ID: 1, Timestamp: t0, Editor: "alice", SHA1: "aaa"},
		{ID: 2, Timestamp: t0.Add(time.Minute), Editor: "alice", SHA1: "bbb"},
		{ID: 3, Timestamp: t0.Add(2 * time.Minute), Editor: "alice", SHA1: "aaa"},
	})

	reverts := NewDetector().Detect(h)
	if len(reverts) != 1 {
		t.Fatalf("self-revert must be counted, got %d reverts", len(reverts))
	}
	if reverts[0].Revision.Editor != "alice" {
		t.Errorf("unexpected editor %q", reverts[0].Revision.Editor)
	}
}

func TestDetectIsDeterministic(t *testing.T) {
	h := history(t, []revision.Revision{
		{ID: 1, Timestamp: t0, Editor: "alice", SHA1: "aaa"},
		{ID: 2, Timestamp: t0.Add(time.Minute), Editor: "bob", Comment: "undo", SHA1: "bbb"},
		{ID: 3, Timestamp: t0.Add(2 * time.Minute), Editor: "carol", SHA1: "aaa"},
	})

	d := NewDetector()
	first := d.Detect(h)
	second := d.Detect(h)

	if len(first) != len(second) {
		t.Fatalf("runs differ in length: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("run mismatch at %d: %+v vs %+v", i, first[i], second[i])
		}
	}
}
