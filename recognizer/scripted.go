package recognizer

import (
	"sync"
	"time"
)

// Scripted emits a predetermined word sequence at a fixed interval, one
// final Event per word. It satisfies the same contract as the live decoder,
// so demo runs and tests exercise the full pipeline without a microphone or
// model. With loop enabled the sequence repeats until Close.
type Scripted struct {
	events    chan Event
	done      chan struct{}
	closeOnce sync.Once
}

func NewScripted(words []string, interval time.Duration, loop bool) *Scripted {
	s := &Scripted{
		events: make(chan Event, 16),
		done:   make(chan struct{}),
	}
	go s.play(words, interval, loop)
	return s
}

func (s *Scripted) play(words []string, interval time.Duration, loop bool) {
	defer close(s.events)
	if len(words) == 0 {
		<-s.done
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	i := 0
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
		}
		select {
		case s.events <- Event{Words: []string{words[i]}, Final: true}:
		case <-s.done:
			return
		}
		i++
		if i == len(words) {
			if !loop {
				// Sequence exhausted; stay quiet until Close.
				<-s.done
				return
			}
			i = 0
		}
	}
}

// Push accepts and discards audio; the script does not depend on input.
func (s *Scripted) Push([]byte) {}

func (s *Scripted) Events() <-chan Event { return s.events }

func (s *Scripted) Dropped() uint64 { return 0 }

func (s *Scripted) Close() error {
	s.closeOnce.Do(func() { close(s.done) })
	return nil
}
