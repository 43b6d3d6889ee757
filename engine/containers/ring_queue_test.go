package containers

import (
	"errors"
	"testing"
)

func TestRingQueueFixed(t *testing.T) {
	rq := NewRingQueue[int](2)
	if _, err := rq.Dequeue(); !errors.Is(err, ErrQueueEmpty) {
		t.Errorf("Dequeue() on empty error = %v, want %v", err, ErrQueueEmpty)
	}
	if err := rq.Enqueue(1); err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}
	if err := rq.Enqueue(2); err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}
	if err := rq.Enqueue(3); !errors.Is(err, ErrQueueFull) {
		t.Errorf("Enqueue() on full error = %v, want %v", err, ErrQueueFull)
	}
	if v, _ := rq.Peek(); v != 1 {
		t.Errorf("Peek() = %d, want 1", v)
	}
	if v, _ := rq.Dequeue(); v != 1 {
		t.Errorf("Dequeue() = %d, want 1", v)
	}
	// wraps around the end of the buffer
	if err := rq.Enqueue(3); err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}
	if got := rq.Drain(); len(got) != 2 || got[0] != 2 || got[1] != 3 {
		t.Errorf("Drain() = %v, want [2 3]", got)
	}
	if !rq.IsEmpty() {
		t.Error("queue should be empty after Drain")
	}
}

func TestRingQueueGrowable(t *testing.T) {
	rq := NewGrowableRingQueue[string](2)
	rq.Enqueue("a")
	rq.Enqueue("b")
	rq.Dequeue()
	for _, s := range []string{"c", "d", "e"} {
		if err := rq.Enqueue(s); err != nil {
			t.Fatalf("Enqueue(%q) error = %v", s, err)
		}
	}
	if rq.Cap() != 4 || rq.Len() != 4 {
		t.Errorf("Cap()/Len() = %d/%d, want 4/4", rq.Cap(), rq.Len())
	}
	got := rq.Drain()
	want := []string{"b", "c", "d", "e"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Drain() = %v, want %v", got, want)
		}
	}
}

func TestRingQueueMinimumSize(t *testing.T) {
	if got := NewRingQueue[int](0).Cap(); got != 1 {
		t.Errorf("Cap() = %d, want 1", got)
	}
}

func TestRingQueueItems(t *testing.T) {
	rq := NewRingQueue[int](3)
	for _, v := range []int{1, 2, 3} {
		rq.Enqueue(v)
	}
	rq.Dequeue()
	rq.Enqueue(4)

	got := rq.Items()
	want := []int{2, 3, 4}
	if len(got) != len(want) {
		t.Fatalf("Items() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Items() = %v, want %v", got, want)
		}
	}
	if rq.Len() != 3 {
		t.Errorf("Len() after Items() = %d, want 3", rq.Len())
	}
}
