package audio

import (
	"encoding/binary"
	"math"
	"sync"
	"time"
)

const (
	synthFrameSamples = 800 // 50ms at 16kHz
	synthToneHz       = 220.0
	synthBurstFrames  = 10 // 0.5s tone, then 0.5s silence
)

// SyntheticContext produces capture devices that generate alternating tone
// bursts and silence at real-time pace, so demo runs get a moving level
// meter and speech indicator without touching any hardware.
type SyntheticContext struct{}

func NewSyntheticContext() *SyntheticContext { return &SyntheticContext{} }

func (s *SyntheticContext) Devices() ([]DeviceInfo, error) {
	return []DeviceInfo{{ID: "synthetic", Name: "synthetic tone generator"}}, nil
}

func (s *SyntheticContext) Close() {}

func (s *SyntheticContext) NewCapture(_ *DeviceInfo, config CaptureConfig) (CaptureDevice, error) {
	rate := config.SampleRate
	if rate == 0 {
		rate = SampleRate
	}
	return &SyntheticCapture{rate: rate}, nil
}

type SyntheticCapture struct {
	rate uint32

	mu   sync.Mutex
	cb   DataCallback
	stop chan struct{}
	done chan struct{}
}

func (c *SyntheticCapture) SetCallback(cb DataCallback) {
	c.mu.Lock()
	c.cb = cb
	c.mu.Unlock()
}

func (c *SyntheticCapture) ClearCallback() {
	c.mu.Lock()
	c.cb = nil
	c.mu.Unlock()
}

func (c *SyntheticCapture) DeviceName() string { return "synthetic" }

func (c *SyntheticCapture) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stop != nil {
		return nil
	}
	c.stop = make(chan struct{})
	c.done = make(chan struct{})

	interval := time.Duration(synthFrameSamples) * time.Second / time.Duration(c.rate)
	go func() {
		defer close(c.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		frame := 0
		phase := 0.0
		for {
			select {
			case <-c.stop:
				return
			case <-ticker.C:
			}

			c.mu.Lock()
			cb := c.cb
			c.mu.Unlock()
			if cb == nil {
				continue
			}

			data := make([]byte, synthFrameSamples*2)
			if frame%(2*synthBurstFrames) < synthBurstFrames {
				step := 2 * math.Pi * synthToneHz / float64(c.rate)
				for i := 0; i < synthFrameSamples; i++ {
					sample := int16(math.Sin(phase) * 0.3 * 32767)
					binary.LittleEndian.PutUint16(data[i*2:], uint16(sample))
					phase += step
				}
			}
			frame++
			cb(data, synthFrameSamples)
		}
	}()
	return nil
}

func (c *SyntheticCapture) Stop() {
	// Release the lock before waiting: the feed goroutine takes it to
	// read the callback.
	c.mu.Lock()
	stop, done := c.stop, c.done
	c.stop = nil
	c.mu.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	<-done
}

func (c *SyntheticCapture) Close() {
	c.Stop()
}
