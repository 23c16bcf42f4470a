package store

import "testing"

func TestWindowPushEvictsOldest(t *testing.T) {
	w := NewWindow()
	for i := 0; i < WindowCapacity; i++ {
		w.Push(false)
	}
	if !w.Full() {
		t.Fatalf("expected full window")
	}
	w.Push(true)
	if w.Len() != WindowCapacity {
		t.Fatalf("Len() = %d, want %d", w.Len(), WindowCapacity)
	}
	if !w.Last() {
		t.Fatalf("most recent entry must be last")
	}
	if w.TrueCount() != 1 {
		t.Fatalf("TrueCount() = %d, want 1", w.TrueCount())
	}
}

func TestWindowSignals(t *testing.T) {
	w := NewWindow()
	if w.Last() {
		t.Fatal("empty window Last() should be false")
	}
	for i := 0; i < WindowCapacity; i++ {
		w.Push(true)
	}
	if !w.All() || w.TrueCount() != WindowCapacity {
		t.Fatalf("expected all-true window, count=%d", w.TrueCount())
	}
	w.Push(false)
	if w.All() {
		t.Fatal("All() should be false after pushing false")
	}
	if w.TrueCount() != WindowCapacity-1 {
		t.Fatalf("TrueCount() = %d, want %d", w.TrueCount(), WindowCapacity-1)
	}
}

func TestWindowValuesOrder(t *testing.T) {
	w := NewWindow()
	pattern := []bool{true, false, true, true, false}
	for _, v := range pattern {
		w.Push(v)
	}
	got := w.Values()
	if len(got) != len(pattern) {
		t.Fatalf("Values() len = %d, want %d", len(got), len(pattern))
	}
	for i, v := range pattern {
		if got[i] != v {
			t.Fatalf("Values()[%d] = %v, want %v", i, got[i], v)
		}
	}
	// 拷贝语义：修改返回值不影响窗口。
	got[0] = !got[0]
	if w.Values()[0] != pattern[0] {
		t.Fatal("Values() must return a copy")
	}
}
