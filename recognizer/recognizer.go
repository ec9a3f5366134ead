// Package recognizer turns raw PCM frames into transcription events. The
// live implementation feeds a streaming Vosk decoder through a bounded
// frame queue; Scripted replays a predetermined word sequence for demo and
// test runs under the identical Event contract.
package recognizer

// Event is one recognizer output unit: an ordered word sequence plus a
// finality flag. Partial events may be revised by later events of the same
// utterance; final events are stable.
type Event struct {
	Words []string
	Final bool
}

// Recognizer consumes audio frames and emits Events.
//
// Push must never block the capture path: implementations buffer frames in
// a bounded queue and drop the oldest frame on overflow, counting drops.
type Recognizer interface {
	Push(pcm []byte)
	Events() <-chan Event
	Dropped() uint64
	Close() error
}
