package recognizer

import (
	"testing"
	"time"
)

func TestFrameQueueFIFO(t *testing.T) {
	q := newFrameQueue(4)
	q.Push([]byte{1})
	q.Push([]byte{2})

	done := make(chan struct{})
	for _, want := range []byte{1, 2} {
		frame, ok := q.Pop(done)
		if !ok || frame[0] != want {
			t.Fatalf("Pop = %v/%v, want [%d]", frame, ok, want)
		}
	}
}

func TestFrameQueueCopiesInput(t *testing.T) {
	q := newFrameQueue(4)
	buf := []byte{42}
	q.Push(buf)
	buf[0] = 0 // capture backends reuse their buffers

	frame, _ := q.Pop(make(chan struct{}))
	if frame[0] != 42 {
		t.Error("queued frame aliases the caller's buffer")
	}
}

func TestFrameQueueDropsOldestOnOverflow(t *testing.T) {
	q := newFrameQueue(3)
	for i := byte(1); i <= 5; i++ {
		q.Push([]byte{i})
	}
	if got := q.Dropped(); got != 2 {
		t.Errorf("dropped = %d, want 2", got)
	}

	done := make(chan struct{})
	var got []byte
	for i := 0; i < 3; i++ {
		frame, ok := q.Pop(done)
		if !ok {
			t.Fatal("queue shorter than capacity")
		}
		got = append(got, frame[0])
	}
	want := []byte{3, 4, 5}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("frames = %v, want %v", got, want)
		}
	}
}

func TestFrameQueuePushNeverBlocks(t *testing.T) {
	q := newFrameQueue(1)
	finished := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			q.Push([]byte{byte(i)})
		}
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("Push blocked on a full queue")
	}
}

func TestFrameQueuePopUnblocksOnDone(t *testing.T) {
	q := newFrameQueue(2)
	done := make(chan struct{})
	close(done)
	if _, ok := q.Pop(done); ok {
		t.Error("Pop returned a frame from an empty closed queue")
	}
}

func TestFrameQueueDrainsAfterDone(t *testing.T) {
	q := newFrameQueue(2)
	q.Push([]byte{7})
	done := make(chan struct{})
	close(done)
	if frame, ok := q.Pop(done); !ok || frame[0] != 7 {
		t.Error("queued frame lost at shutdown")
	}
	if _, ok := q.Pop(done); ok {
		t.Error("expected empty queue after drain")
	}
}

func TestFrameQueueIgnoresEmptyFrames(t *testing.T) {
	q := newFrameQueue(2)
	q.Push(nil)
	done := make(chan struct{})
	close(done)
	if _, ok := q.Pop(done); ok {
		t.Error("empty frame was queued")
	}
}
