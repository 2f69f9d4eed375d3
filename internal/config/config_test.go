package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should validate, got: %v", err)
	}
}

func TestLoadValidConfig(t *testing.T) {
	content := `
receiver:
  listen_port: 6000
  bind_address: "0.0.0.0"
  socket_buffer: 131072
  queue_size: 20
sender:
  target_host: "192.168.1.10"
  target_port: 6000
  socket_buffer: 65536
audio:
  device_id: 3
  sample_rate: 48000
  channels: 1
  chunk_size: 512
monitor:
  enabled: true
  address: "127.0.0.1"
  port: 9100
logging:
  level: "debug"
  format: "json"
  output: "stderr"
`
	path := writeTempConfig(t, content)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Receiver.ListenPort != 6000 {
		t.Errorf("Expected listen_port 6000, got %d", cfg.Receiver.ListenPort)
	}
	if cfg.Receiver.QueueSize != 20 {
		t.Errorf("Expected queue_size 20, got %d", cfg.Receiver.QueueSize)
	}
	if cfg.Sender.TargetHost != "192.168.1.10" {
		t.Errorf("Expected target_host 192.168.1.10, got %s", cfg.Sender.TargetHost)
	}
	if cfg.Audio.SampleRate != 48000 {
		t.Errorf("Expected sample_rate 48000, got %d", cfg.Audio.SampleRate)
	}
	if cfg.Audio.Channels != 1 {
		t.Errorf("Expected channels 1, got %d", cfg.Audio.Channels)
	}
	if !cfg.Monitor.Enabled {
		t.Error("Expected monitor enabled")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Expected log level debug, got %s", cfg.Logging.Level)
	}
}

func TestLoadLayersOverDefaults(t *testing.T) {
	// A file setting only one section keeps defaults elsewhere.
	path := writeTempConfig(t, "audio:\n  sample_rate: 22050\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Audio.SampleRate != 22050 {
		t.Errorf("Expected sample_rate 22050, got %d", cfg.Audio.SampleRate)
	}
	if cfg.Receiver.ListenPort != 5005 {
		t.Errorf("Expected default listen_port 5005, got %d", cfg.Receiver.ListenPort)
	}
	if cfg.Audio.ChunkSize != 1024 {
		t.Errorf("Expected default chunk_size 1024, got %d", cfg.Audio.ChunkSize)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("Expected error for missing config file")
	}
}

func TestLoadOrDefaultMissingFile(t *testing.T) {
	cfg, err := LoadOrDefault("/nonexistent/config.yaml")
	if err != nil {
		t.Fatalf("LoadOrDefault failed: %v", err)
	}
	if cfg.Receiver.ListenPort != 5005 {
		t.Errorf("Expected default config, got listen_port %d", cfg.Receiver.ListenPort)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeTempConfig(t, "receiver: [not a map\n")

	if _, err := Load(path); err == nil {
		t.Error("Expected error for invalid YAML")
	}
}

func TestReceiverConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ReceiverConfig)
		wantErr string
	}{
		{"valid", func(r *ReceiverConfig) {}, ""},
		{"port too low", func(r *ReceiverConfig) { r.ListenPort = 0 }, "listen_port"},
		{"port too high", func(r *ReceiverConfig) { r.ListenPort = 70000 }, "listen_port"},
		{"empty bind address", func(r *ReceiverConfig) { r.BindAddress = "" }, "bind_address"},
		{"socket buffer too small", func(r *ReceiverConfig) { r.SocketBuffer = 1024 }, "socket_buffer"},
		{"zero queue size", func(r *ReceiverConfig) { r.QueueSize = 0 }, "queue_size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default().Receiver
			tt.mutate(&cfg)
			err := cfg.Validate()
			checkValidation(t, err, tt.wantErr)
		})
	}
}

func TestSenderConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*SenderConfig)
		wantErr string
	}{
		{"valid", func(s *SenderConfig) {}, ""},
		{"empty host", func(s *SenderConfig) { s.TargetHost = "" }, "target_host"},
		{"port too low", func(s *SenderConfig) { s.TargetPort = 0 }, "target_port"},
		{"socket buffer too small", func(s *SenderConfig) { s.SocketBuffer = 0 }, "socket_buffer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default().Sender
			tt.mutate(&cfg)
			err := cfg.Validate()
			checkValidation(t, err, tt.wantErr)
		})
	}
}

func TestAudioConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*AudioConfig)
		wantErr string
	}{
		{"valid", func(a *AudioConfig) {}, ""},
		{"default device", func(a *AudioConfig) { a.DeviceID = -1 }, ""},
		{"device below -1", func(a *AudioConfig) { a.DeviceID = -2 }, "device_id"},
		{"sample rate too low", func(a *AudioConfig) { a.SampleRate = 4000 }, "sample_rate"},
		{"sample rate too high", func(a *AudioConfig) { a.SampleRate = 384000 }, "sample_rate"},
		{"zero channels", func(a *AudioConfig) { a.Channels = 0 }, "channels"},
		{"too many channels", func(a *AudioConfig) { a.Channels = 16 }, "channels"},
		{"zero chunk size", func(a *AudioConfig) { a.ChunkSize = 0 }, "chunk_size"},
		{"mono chunk at datagram limit", func(a *AudioConfig) { a.Channels = 1; a.ChunkSize = 16376 }, ""},
		{"chunk exceeds datagram limit", func(a *AudioConfig) { a.Channels = 2; a.ChunkSize = 16384 }, "UDP limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default().Audio
			tt.mutate(&cfg)
			err := cfg.Validate()
			checkValidation(t, err, tt.wantErr)
		})
	}
}

func TestMonitorConfigValidation(t *testing.T) {
	disabled := MonitorConfig{Enabled: false}
	if err := disabled.Validate(); err != nil {
		t.Errorf("Disabled monitor should not validate its address, got: %v", err)
	}

	enabled := MonitorConfig{Enabled: true, Address: "", Port: 9090}
	if err := enabled.Validate(); err == nil {
		t.Error("Expected error for enabled monitor with empty address")
	}

	badPort := MonitorConfig{Enabled: true, Address: "127.0.0.1", Port: 0}
	if err := badPort.Validate(); err == nil {
		t.Error("Expected error for enabled monitor with invalid port")
	}
}

func TestLoggingConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     LoggingConfig
		wantErr bool
	}{
		{"valid text", LoggingConfig{Level: "info", Format: "text", Output: "stdout"}, false},
		{"valid json", LoggingConfig{Level: "error", Format: "json", Output: "stderr"}, false},
		{"file output", LoggingConfig{Level: "warn", Format: "text", Output: "/tmp/bridge.log"}, false},
		{"bad level", LoggingConfig{Level: "verbose", Format: "text", Output: "stdout"}, true},
		{"bad format", LoggingConfig{Level: "info", Format: "xml", Output: "stdout"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("Expected validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Expected no error, got: %v", err)
			}
		})
	}
}

func TestConfigValidateWrapsSection(t *testing.T) {
	cfg := Default()
	cfg.Audio.Channels = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Expected validation error")
	}
	if !strings.Contains(err.Error(), "audio config") {
		t.Errorf("Expected section prefix in error, got: %v", err)
	}
}

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write temp config: %v", err)
	}
	return path
}

func checkValidation(t *testing.T, err error, want string) {
	t.Helper()
	if want == "" {
		if err != nil {
			t.Errorf("Expected no error, got: %v", err)
		}
		return
	}
	if err == nil {
		t.Errorf("Expected error containing %q, got nil", want)
		return
	}
	if !strings.Contains(err.Error(), want) {
		t.Errorf("Expected error containing %q, got: %v", want, err)
	}
}
