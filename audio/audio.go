// Package audio captures raw PCM frames from a microphone. Linux uses
// PulseAudio, other platforms miniaudio; Synthetic generates frames without
// any device for demo and test runs.
package audio

// Capture format expected by the speech decoder: 16kHz mono S16LE.
const (
	SampleRate = 16000
	Channels   = 1
)

// DataCallback receives one capture buffer. Implementations may reuse the
// buffer between calls; consumers must copy what they keep.
type DataCallback func(data []byte, frameCount uint32)

type CaptureConfig struct {
	SampleRate uint32
	Channels   uint32
}

type DeviceInfo struct {
	ID   string // opaque platform-specific identifier
	Name string
}

type Context interface {
	Devices() ([]DeviceInfo, error)
	NewCapture(device *DeviceInfo, config CaptureConfig) (CaptureDevice, error)
	Close()
}

type CaptureDevice interface {
	Start() error
	Stop()
	Close()
	SetCallback(cb DataCallback)
	ClearCallback()
	DeviceName() string
}
