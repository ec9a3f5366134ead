package main

import (
	"context"
	"encoding/binary"
	"math"
	"time"

	"horch/dispatch"
	"horch/log"
	"horch/matcher"
	"horch/recognizer"
	"horch/state"
)

// pipeline connects recognizer events to matching, state updates and script
// dispatch. Events are handled strictly in arrival order; the store is the
// only place it mutates shared state.
type pipeline struct {
	rec   recognizer.Recognizer
	match *matcher.Matcher
	store *state.Store
	disp  *dispatch.Dispatcher
}

// droppedPollInterval bounds how stale the dashboard's drop warning can get
// when the decoder is stalled and emitting no events.
const droppedPollInterval = time.Second

func (p *pipeline) run(ctx context.Context) {
	ticker := time.NewTicker(droppedPollInterval)
	defer ticker.Stop()

	var lastDropped uint64
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			lastDropped = p.syncDropped(lastDropped)
		case ev, ok := <-p.rec.Events():
			if !ok {
				return
			}
			p.handle(ev)
			lastDropped = p.syncDropped(lastDropped)
		}
	}
}

func (p *pipeline) syncDropped(last uint64) uint64 {
	d := p.rec.Dropped()
	if d != last {
		p.store.SetDroppedFrames(d)
		log.FrameDrops(d)
	}
	return d
}

func (p *pipeline) handle(ev recognizer.Event) {
	// Partials are revised by later events of the same utterance; only
	// finals go into the rolling word buffer, or words would appear
	// twice. Matching runs on both — the highlight-window debounce in
	// the store keeps partial+final from firing a keyword twice.
	if ev.Final {
		p.store.AppendWords(ev.Words...)
	}
	for _, token := range ev.Words {
		m, ok := p.match.Match(token)
		if !ok {
			continue
		}
		if !p.store.Trigger(m.Keyword) {
			continue // still inside its highlight window
		}
		log.KeywordTrigger(m.Keyword, m.Token, m.Similarity)
		p.disp.Dispatch(m.Keyword, m.Script)
	}
}

// rmsLevel computes the normalized RMS of an S16LE buffer for the level
// meter.
func rmsLevel(data []byte) float64 {
	if len(data) < 2 {
		return 0
	}
	var sumSquares float64
	for i := 0; i+1 < len(data); i += 2 {
		sample := int16(binary.LittleEndian.Uint16(data[i:]))
		normalized := float64(sample) / 32768.0
		sumSquares += normalized * normalized
	}
	return math.Sqrt(sumSquares / float64(len(data)/2))
}
