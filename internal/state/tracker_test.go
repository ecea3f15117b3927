package state_test

import (
	"testing"

	"tagpeek/internal/state"
)

func TestMarkExpanded(t *testing.T) {
	tracker := state.NewTracker()
	key := state.Key{Document: "file:///a.txt", Start: 6}

	if tracker.IsExpanded(key) {
		t.Fatal("new tracker should have nothing expanded")
	}

	tracker.MarkExpanded(key)
	if !tracker.IsExpanded(key) {
		t.Error("key should be expanded after MarkExpanded")
	}
	if tracker.IsExpanded(state.Key{Document: "file:///a.txt", Start: 7}) {
		t.Error("a different start offset is a different logical tag")
	}
}

// After Reconcile(S), IsExpanded(k) == (k in S) for every key, with no
// leftover membership.
func TestReconcileTotality(t *testing.T) {
	tracker := state.NewTracker()

	old := state.Key{Document: "file:///a.txt", Start: 1}
	kept := state.Key{Document: "file:///a.txt", Start: 10}
	added := state.Key{Document: "file:///b.txt", Start: 3}

	tracker.MarkExpanded(old)
	tracker.MarkExpanded(kept)

	tracker.Reconcile([]state.Key{kept, added})

	if tracker.IsExpanded(old) {
		t.Error("stale key survived reconciliation")
	}
	if !tracker.IsExpanded(kept) {
		t.Error("present key lost during reconciliation")
	}
	if !tracker.IsExpanded(added) {
		t.Error("newly present key missing after reconciliation")
	}

	tracker.Reconcile(nil)
	for _, key := range []state.Key{old, kept, added} {
		if tracker.IsExpanded(key) {
			t.Errorf("key %+v expanded after reconciling to empty set", key)
		}
	}
}
