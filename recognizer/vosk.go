package recognizer

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	vosk "github.com/alphacep/vosk-api/go"
)

// Vosk decodes a live PCM stream with a Kaldi model. Frames pushed from the
// capture callback land in a bounded queue; a single decoder goroutine
// feeds them to the recognizer and emits partial and final events.
type Vosk struct {
	model  *vosk.VoskModel
	rec    *vosk.VoskRecognizer
	queue  *frameQueue
	events chan Event
	done   chan struct{}
	closed chan struct{}
}

// NewVosk opens the acoustic model at modelPath and starts the decoder
// loop. A missing or unreadable model is a startup error; callers treat it
// as fatal.
func NewVosk(modelPath string, sampleRate int) (*Vosk, error) {
	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("speech model not found at %s: %w", modelPath, err)
	}

	vosk.SetLogLevel(-1)
	model, err := vosk.NewModel(modelPath)
	if err != nil {
		return nil, fmt.Errorf("load speech model: %w", err)
	}
	rec, err := vosk.NewRecognizer(model, float64(sampleRate))
	if err != nil {
		return nil, fmt.Errorf("create recognizer: %w", err)
	}

	v := &Vosk{
		model:  model,
		rec:    rec,
		queue:  newFrameQueue(frameQueueCap),
		events: make(chan Event, 16),
		done:   make(chan struct{}),
		closed: make(chan struct{}),
	}
	go v.decodeLoop()
	return v, nil
}

func (v *Vosk) Push(pcm []byte) { v.queue.Push(pcm) }

func (v *Vosk) Events() <-chan Event { return v.events }

func (v *Vosk) Dropped() uint64 { return v.queue.Dropped() }

// Close stops the decoder and releases the model. Safe to call once.
func (v *Vosk) Close() error {
	close(v.done)
	<-v.closed
	return nil
}

func (v *Vosk) decodeLoop() {
	defer close(v.closed)
	defer close(v.events)
	defer v.model.Free()
	defer v.rec.Free()

	lastPartial := ""
	for {
		frame, ok := v.queue.Pop(v.done)
		if !ok {
			// Flush whatever the decoder is still holding.
			if words := parseText(v.rec.FinalResult(), "text"); len(words) > 0 {
				v.emit(Event{Words: words, Final: true})
			}
			return
		}

		if v.rec.AcceptWaveform(frame) != 0 {
			// Utterance boundary: a final result is available.
			if words := parseText(v.rec.Result(), "text"); len(words) > 0 {
				v.emit(Event{Words: words, Final: true})
			}
			lastPartial = ""
			continue
		}

		// Decoder not ready yet; a changed partial is worth emitting,
		// silence is not an error.
		partial := strings.Join(parseText(v.rec.PartialResult(), "partial"), " ")
		if partial != "" && partial != lastPartial {
			lastPartial = partial
			v.emit(Event{Words: strings.Fields(partial), Final: false})
		}
	}
}

// emit delivers ev, falling back to best effort once shutdown has begun so
// the drain path can never deadlock on a departed consumer.
func (v *Vosk) emit(ev Event) {
	select {
	case v.events <- ev:
	case <-v.done:
		select {
		case v.events <- ev:
		default:
		}
	}
}

// parseText extracts the named field from a Vosk JSON result and splits it
// into words, preserving order.
func parseText(raw, field string) []string {
	var result map[string]any
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil
	}
	text, _ := result[field].(string)
	text = strings.TrimSpace(strings.ToLower(text))
	if text == "" {
		return nil
	}
	return strings.Fields(text)
}
