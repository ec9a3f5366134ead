package recognizer

import "sync/atomic"

// frameQueueCap bounds buffered audio between capture and decoder. At
// ~50ms per capture callback this is a few seconds of backlog.
const frameQueueCap = 64

// frameQueue is a bounded FIFO of PCM frames. Push never blocks: when the
// queue is full the oldest frame is evicted and counted as dropped.
type frameQueue struct {
	frames  chan []byte
	dropped atomic.Uint64
}

func newFrameQueue(capacity int) *frameQueue {
	if capacity < 1 {
		capacity = 1
	}
	return &frameQueue{frames: make(chan []byte, capacity)}
}

// Push copies pcm (capture backends reuse their buffers) and enqueues it,
// evicting the oldest frame on overflow.
func (q *frameQueue) Push(pcm []byte) {
	if len(pcm) == 0 {
		return
	}
	frame := make([]byte, len(pcm))
	copy(frame, pcm)
	for {
		select {
		case q.frames <- frame:
			return
		default:
		}
		select {
		case <-q.frames:
			q.dropped.Add(1)
		default:
		}
	}
}

// Pop blocks until a frame is available or done closes.
func (q *frameQueue) Pop(done <-chan struct{}) ([]byte, bool) {
	select {
	case frame := <-q.frames:
		return frame, true
	case <-done:
		// Drain what is already queued so final words are not lost.
		select {
		case frame := <-q.frames:
			return frame, true
		default:
			return nil, false
		}
	}
}

func (q *frameQueue) Dropped() uint64 { return q.dropped.Load() }
