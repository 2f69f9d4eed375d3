package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/shehabattia96/carry-sound/internal/pcm"
)

// Config represents the complete bridge configuration.
type Config struct {
	Receiver ReceiverConfig `yaml:"receiver"`
	Sender   SenderConfig   `yaml:"sender"`
	Audio    AudioConfig    `yaml:"audio"`
	Monitor  MonitorConfig  `yaml:"monitor"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ReceiverConfig contains the inbound socket and playback queue parameters.
type ReceiverConfig struct {
	ListenPort   int    `yaml:"listen_port"`
	BindAddress  string `yaml:"bind_address"`
	SocketBuffer int    `yaml:"socket_buffer"` // bytes, receive buffer hint
	QueueSize    int    `yaml:"queue_size"`    // blocks, not bytes
}

// SenderConfig contains the outbound socket parameters.
type SenderConfig struct {
	TargetHost   string `yaml:"target_host"`
	TargetPort   int    `yaml:"target_port"`
	SocketBuffer int    `yaml:"socket_buffer"` // bytes, send buffer hint
}

// AudioConfig contains the stream parameters shared by both endpoints.
type AudioConfig struct {
	DeviceID   int `yaml:"device_id"` // -1 selects the system default
	SampleRate int `yaml:"sample_rate"`
	Channels   int `yaml:"channels"`
	ChunkSize  int `yaml:"chunk_size"` // frames per device period
}

// MonitorConfig contains the optional HTTP monitoring endpoint configuration.
type MonitorConfig struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address"`
	Port    int    `yaml:"port"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// minSocketBuffer is the smallest useful kernel buffer hint; anything
// below one maximum datagram invites drops under arrival jitter.
const minSocketBuffer = 65536

// Default returns the built-in configuration, matching the defaults
// the CLI advertises. It is valid without a config file.
func Default() *Config {
	return &Config{
		Receiver: ReceiverConfig{
			ListenPort:   5005,
			BindAddress:  "0.0.0.0",
			SocketBuffer: minSocketBuffer,
			QueueSize:    10,
		},
		Sender: SenderConfig{
			TargetHost:   "127.0.0.1",
			TargetPort:   5005,
			SocketBuffer: minSocketBuffer,
		},
		Audio: AudioConfig{
			DeviceID:   -1,
			SampleRate: 44100,
			Channels:   2,
			ChunkSize:  1024,
		},
		Monitor: MonitorConfig{
			Enabled: false,
			Address: "127.0.0.1",
			Port:    9090,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stdout",
		},
	}
}

// Load reads and parses the configuration file, layered over defaults.
func Load(path string) (*Config, error) {
	config := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// LoadOrDefault behaves like Load but falls back to the built-in
// defaults when the file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return Load(path)
}

// Validate performs comprehensive validation of the configuration.
func (c *Config) Validate() error {
	if err := c.Receiver.Validate(); err != nil {
		return fmt.Errorf("receiver config: %w", err)
	}

	if err := c.Sender.Validate(); err != nil {
		return fmt.Errorf("sender config: %w", err)
	}

	if err := c.Audio.Validate(); err != nil {
		return fmt.Errorf("audio config: %w", err)
	}

	if err := c.Monitor.Validate(); err != nil {
		return fmt.Errorf("monitor config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// Validate validates receiver configuration.
func (r *ReceiverConfig) Validate() error {
	if r.ListenPort < 1 || r.ListenPort > 65535 {
		return fmt.Errorf("listen_port must be between 1 and 65535, got %d", r.ListenPort)
	}

	if r.BindAddress == "" {
		return fmt.Errorf("bind_address cannot be empty")
	}

	if r.SocketBuffer < minSocketBuffer {
		return fmt.Errorf("socket_buffer must be at least %d bytes, got %d", minSocketBuffer, r.SocketBuffer)
	}

	if r.QueueSize < 1 {
		return fmt.Errorf("queue_size must be at least 1 block, got %d", r.QueueSize)
	}

	return nil
}

// Validate validates sender configuration.
func (s *SenderConfig) Validate() error {
	if s.TargetHost == "" {
		return fmt.Errorf("target_host cannot be empty")
	}

	if s.TargetPort < 1 || s.TargetPort > 65535 {
		return fmt.Errorf("target_port must be between 1 and 65535, got %d", s.TargetPort)
	}

	if s.SocketBuffer < minSocketBuffer {
		return fmt.Errorf("socket_buffer must be at least %d bytes, got %d", minSocketBuffer, s.SocketBuffer)
	}

	return nil
}

// Validate validates audio configuration. The chunk size bound keeps a
// full capture period inside a single UDP datagram.
func (a *AudioConfig) Validate() error {
	if a.DeviceID < -1 {
		return fmt.Errorf("device_id must be -1 (default device) or a device index, got %d", a.DeviceID)
	}

	if a.SampleRate < 8000 || a.SampleRate > 192000 {
		return fmt.Errorf("sample_rate must be between 8000 and 192000 Hz, got %d", a.SampleRate)
	}

	if a.Channels < 1 || a.Channels > 8 {
		return fmt.Errorf("channels must be between 1 and 8, got %d", a.Channels)
	}

	if a.ChunkSize < 1 {
		return fmt.Errorf("chunk_size must be at least 1 frame, got %d", a.ChunkSize)
	}

	if size := pcm.DatagramSize(a.ChunkSize, a.Channels); size > pcm.MaxDatagramSize {
		return fmt.Errorf("chunk_size %d with %d channels needs a %d byte datagram, exceeding the %d byte UDP limit",
			a.ChunkSize, a.Channels, size, pcm.MaxDatagramSize)
	}

	return nil
}

// Validate validates monitor configuration.
func (m *MonitorConfig) Validate() error {
	if m.Enabled {
		if m.Port < 1 || m.Port > 65535 {
			return fmt.Errorf("monitor port must be between 1 and 65535, got %d", m.Port)
		}

		if m.Address == "" {
			return fmt.Errorf("monitor address cannot be empty when enabled")
		}
	}

	return nil
}

// Validate validates logging configuration.
func (l *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[l.Level] {
		return fmt.Errorf("level must be one of [debug, info, warn, error], got '%s'", l.Level)
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("format must be 'json' or 'text', got '%s'", l.Format)
	}

	return nil
}
