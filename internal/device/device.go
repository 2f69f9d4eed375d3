package device

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// Info describes one audio device known to the host API.
type Info struct {
	Index             int
	Name              string
	MaxInputChannels  int
	MaxOutputChannels int
	DefaultSampleRate float64
}

// Initialize starts the PortAudio runtime. It must be called once
// before any other function in this package.
func Initialize() error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize audio subsystem: %w", err)
	}
	return nil
}

// Terminate shuts the PortAudio runtime down.
func Terminate() error {
	return portaudio.Terminate()
}

// List enumerates the available audio devices.
func List() ([]Info, error) {
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate audio devices: %w", err)
	}

	infos := make([]Info, 0, len(devices))
	for i, d := range devices {
		infos = append(infos, Info{
			Index:             i,
			Name:              d.Name,
			MaxInputChannels:  d.MaxInputChannels,
			MaxOutputChannels: d.MaxOutputChannels,
			DefaultSampleRate: d.DefaultSampleRate,
		})
	}
	return infos, nil
}

// OutputStream pulls audio by invoking a callback once per period.
type OutputStream struct {
	stream *portaudio.Stream
}

// InputStream pushes captured audio to a callback once per period.
type InputStream struct {
	stream *portaudio.Stream
}

// resolve maps a device index to its PortAudio descriptor; -1 selects
// the host default for the given direction.
func resolve(deviceID int, output bool) (*portaudio.DeviceInfo, error) {
	if deviceID == -1 {
		if output {
			return portaudio.DefaultOutputDevice()
		}
		return portaudio.DefaultInputDevice()
	}

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate audio devices: %w", err)
	}
	if deviceID < 0 || deviceID >= len(devices) {
		return nil, fmt.Errorf("audio device %d does not exist (have %d devices)", deviceID, len(devices))
	}
	return devices[deviceID], nil
}

// OpenOutput opens a low-latency output stream on the given device.
// The callback is invoked once per period with a buffer of exactly
// chunkSize*channels interleaved samples to fill in place; it runs on
// the audio subsystem's real-time thread.
func OpenOutput(deviceID int, sampleRate float64, channels, chunkSize int, callback func(out []float32)) (*OutputStream, error) {
	dev, err := resolve(deviceID, true)
	if err != nil {
		return nil, err
	}
	if channels > dev.MaxOutputChannels {
		return nil, fmt.Errorf("device %q supports at most %d output channels, need %d",
			dev.Name, dev.MaxOutputChannels, channels)
	}

	params := portaudio.LowLatencyParameters(nil, dev)
	params.Output.Channels = channels
	params.SampleRate = sampleRate
	params.FramesPerBuffer = chunkSize

	stream, err := portaudio.OpenStream(params, func(out []float32) {
		callback(out)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open output stream on %q: %w", dev.Name, err)
	}

	return &OutputStream{stream: stream}, nil
}

// Start begins playback. After Start returns the callback is invoked
// on a strict periodic schedule until Stop.
func (o *OutputStream) Start() error {
	if err := o.stream.Start(); err != nil {
		return fmt.Errorf("failed to start output stream: %w", err)
	}
	return nil
}

// Stop halts playback. No further callback invocations occur after
// Stop returns.
func (o *OutputStream) Stop() error {
	return o.stream.Stop()
}

// Close releases the stream.
func (o *OutputStream) Close() error {
	return o.stream.Close()
}

// OpenInput opens a low-latency input stream on the given device. The
// callback is invoked once per period with exactly chunkSize*channels
// interleaved captured samples.
func OpenInput(deviceID int, sampleRate float64, channels, chunkSize int, callback func(in []float32)) (*InputStream, error) {
	dev, err := resolve(deviceID, false)
	if err != nil {
		return nil, err
	}
	if channels > dev.MaxInputChannels {
		return nil, fmt.Errorf("device %q supports at most %d input channels, need %d",
			dev.Name, dev.MaxInputChannels, channels)
	}

	params := portaudio.LowLatencyParameters(dev, nil)
	params.Input.Channels = channels
	params.SampleRate = sampleRate
	params.FramesPerBuffer = chunkSize

	stream, err := portaudio.OpenStream(params, func(in []float32) {
		callback(in)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open input stream on %q: %w", dev.Name, err)
	}

	return &InputStream{stream: stream}, nil
}

// Start begins capture.
func (i *InputStream) Start() error {
	if err := i.stream.Start(); err != nil {
		return fmt.Errorf("failed to start input stream: %w", err)
	}
	return nil
}

// Stop halts capture.
func (i *InputStream) Stop() error {
	return i.stream.Stop()
}

// Close releases the stream.
func (i *InputStream) Close() error {
	return i.stream.Close()
}
