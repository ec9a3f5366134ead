// Package state owns all mutable pipeline state: per-keyword counters and
// highlight timers, the rolling recognized-word buffer, the execution log,
// and the dropped-frame counter. Every mutation and every snapshot goes
// through one mutex, so a snapshot can never observe a half-applied update.
package state

import (
	"sync"
	"time"
)

const (
	// DefaultWordCapacity bounds the rolling recognized-word buffer.
	DefaultWordCapacity = 200
	// DefaultLogCapacity bounds the stored execution log.
	DefaultLogCapacity = 100
	// DefaultLogTail is how many execution records a snapshot exposes.
	DefaultLogTail = 20
)

// ExecStatus classifies the outcome of one script execution.
type ExecStatus string

const (
	StatusOK       ExecStatus = "ok"
	StatusError    ExecStatus = "error"
	StatusNotFound ExecStatus = "not_found"
	StatusTimeout  ExecStatus = "timeout"
	StatusSkipped  ExecStatus = "skipped"
)

// ExecutionRecord is one append-only entry in the execution log.
type ExecutionRecord struct {
	Keyword string
	At      time.Time
	Status  ExecStatus
	Snippet string
}

// Success reports whether the script ran and exited zero.
func (r ExecutionRecord) Success() bool { return r.Status == StatusOK }

type keywordState struct {
	count            uint64
	lastTriggered    time.Time
	highlightedUntil time.Time
}

// KeywordSnapshot is the read-only view of one keyword's state.
type KeywordSnapshot struct {
	Keyword          string
	Count            uint64
	LastTriggered    time.Time
	HighlightedUntil time.Time
	Highlighted      bool
}

// Snapshot is an internally consistent copy of the whole store, taken under
// the same lock that serializes mutations.
type Snapshot struct {
	TakenAt       time.Time
	Keywords      []KeywordSnapshot
	Words         []string
	Log           []ExecutionRecord // last K records, oldest first
	ExecTotal     uint64            // executions recorded since startup
	DroppedFrames uint64
}

// Store is the single owner of shared pipeline state. All components hold a
// handle to it and mutate only through its methods.
type Store struct {
	mu        sync.Mutex
	order     []string
	keywords  map[string]*keywordState
	words     *ring[string]
	log       *ring[ExecutionRecord]
	execTotal uint64
	dropped   uint64
	highlight time.Duration
	logTail   int
	now       func() time.Time
}

// New creates a store with one zeroed keyword state per configured keyword,
// in configuration order.
func New(keywords []string, highlight time.Duration) *Store {
	s := &Store{
		order:     append([]string(nil), keywords...),
		keywords:  make(map[string]*keywordState, len(keywords)),
		words:     newRing[string](DefaultWordCapacity),
		log:       newRing[ExecutionRecord](DefaultLogCapacity),
		highlight: highlight,
		logTail:   DefaultLogTail,
		now:       time.Now,
	}
	for _, kw := range keywords {
		s.keywords[kw] = &keywordState{}
	}
	return s
}

// SetClock replaces the time source. Tests only.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

// Trigger records a confirmed match for keyword: debounce check, counter
// increment and highlight window update happen in one critical section.
// It returns false when the keyword is still inside its highlight window
// (the match is suppressed) or is not configured.
func (s *Store) Trigger(keyword string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.keywords[keyword]
	if !ok {
		return false
	}
	now := s.now()
	if !st.lastTriggered.IsZero() && now.Sub(st.lastTriggered) < s.highlight {
		return false
	}
	st.count++
	st.lastTriggered = now
	st.highlightedUntil = now.Add(s.highlight)
	return true
}

// AppendWords appends recognized words to the rolling buffer, evicting the
// oldest entries beyond capacity.
func (s *Store) AppendWords(words ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range words {
		s.words.Append(w)
	}
}

// AppendExecution appends one execution record to the log.
func (s *Store) AppendExecution(rec ExecutionRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec.At.IsZero() {
		rec.At = s.now()
	}
	s.log.Append(rec)
	s.execTotal++
}

// SetDroppedFrames records the recognizer's cumulative dropped-frame count.
func (s *Store) SetDroppedFrames(n uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n > s.dropped {
		s.dropped = n
	}
}

// Snapshot returns a consistent copy of all keyword states, the rolling
// words and the last K execution records.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	snap := Snapshot{
		TakenAt:       now,
		Keywords:      make([]KeywordSnapshot, 0, len(s.order)),
		Words:         s.words.Items(),
		Log:           s.log.Tail(s.logTail),
		ExecTotal:     s.execTotal,
		DroppedFrames: s.dropped,
	}
	for _, kw := range s.order {
		st := s.keywords[kw]
		snap.Keywords = append(snap.Keywords, KeywordSnapshot{
			Keyword:          kw,
			Count:            st.count,
			LastTriggered:    st.lastTriggered,
			HighlightedUntil: st.highlightedUntil,
			Highlighted:      now.Before(st.highlightedUntil),
		})
	}
	return snap
}
