package state

import "testing"

func TestRingAppendBelowCapacity(t *testing.T) {
	r := newRing[int](4)
	r.Append(1)
	r.Append(2)
	if r.Len() != 2 {
		t.Fatalf("len = %d, want 2", r.Len())
	}
	got := r.Items()
	if got[0] != 1 || got[1] != 2 {
		t.Errorf("items = %v", got)
	}
}

func TestRingEvictsOldest(t *testing.T) {
	r := newRing[int](3)
	for i := 1; i <= 7; i++ {
		r.Append(i)
	}
	got := r.Items()
	want := []int{5, 6, 7}
	if len(got) != len(want) {
		t.Fatalf("items = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("items = %v, want %v", got, want)
		}
	}
}

func TestRingTail(t *testing.T) {
	r := newRing[int](5)
	for i := 1; i <= 5; i++ {
		r.Append(i)
	}
	tail := r.Tail(2)
	if len(tail) != 2 || tail[0] != 4 || tail[1] != 5 {
		t.Errorf("tail = %v, want [4 5]", tail)
	}
	if got := r.Tail(10); len(got) != 5 {
		t.Errorf("oversized tail = %v", got)
	}
}
