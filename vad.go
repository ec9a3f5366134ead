package main

import (
	"sync"

	webrtcvad "github.com/maxhawkins/go-webrtcvad"

	"horch/audio"
)

const (
	vadMode       = 3
	vadFrameMs    = 20
	vadFrameBytes = audio.SampleRate * vadFrameMs / 1000 * 2 // 640 bytes
)

// vadProcessor classifies capture data into speech/non-speech 20ms frames.
// It only drives the dashboard's speech indicator; the decoder sees every
// frame regardless.
type vadProcessor struct {
	vad *webrtcvad.VAD

	mu           sync.Mutex
	buf          []byte
	totalFrames  int
	speechFrames int
	tickTotal    int
	tickSpeech   int
}

func newVADProcessor() (*vadProcessor, error) {
	v, err := webrtcvad.New()
	if err != nil {
		return nil, err
	}
	if err := v.SetMode(vadMode); err != nil {
		return nil, err
	}
	return &vadProcessor{vad: v}, nil
}

func (p *vadProcessor) Process(data []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.buf = append(p.buf, data...)
	for len(p.buf) >= vadFrameBytes {
		frame := p.buf[:vadFrameBytes]
		p.buf = p.buf[vadFrameBytes:]

		active, err := p.vad.Process(audio.SampleRate, frame)
		if err != nil {
			continue
		}
		p.totalFrames++
		if active {
			p.speechFrames++
		}
	}
}

const speechThreshold = 0.10 // share of speech frames per tick to count as "speaking"

// HasSpeechTick reports whether speech dominated since the previous call.
func (p *vadProcessor) HasSpeechTick() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	t := p.totalFrames - p.tickTotal
	s := p.speechFrames - p.tickSpeech
	p.tickTotal, p.tickSpeech = p.totalFrames, p.speechFrames
	if t == 0 {
		return false
	}
	return float64(s)/float64(t) >= speechThreshold
}
