package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/shehabattia96/carry-sound/internal/config"
)

const defaultConfigPath = "configs/config.yaml"

var rootCmd = &cobra.Command{
	Use:   "carrysound",
	Short: "Stream raw PCM audio between two machines over UDP",
	Long: `carrysound captures audio from an input device and streams it to a
receiver as raw float32 UDP datagrams, or receives such a stream and
plays it on an output device through a bounded real-time buffer.`,
	SilenceUsage: true,
}

func main() {
	rootCmd.AddCommand(recvCmd, sendCmd, devicesCmd)
	rootCmd.PersistentFlags().String("config", defaultConfigPath, "Path to configuration file")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig layers the config file (when present) over the built-in
// defaults, then applies any flags the user set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")

	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return nil, err
	}

	applyFlag := func(name string, dst *int) {
		if cmd.Flags().Changed(name) {
			v, _ := cmd.Flags().GetInt(name)
			*dst = v
		}
	}

	applyFlag("device", &cfg.Audio.DeviceID)
	applyFlag("sample-rate", &cfg.Audio.SampleRate)
	applyFlag("channels", &cfg.Audio.Channels)
	applyFlag("chunk-size", &cfg.Audio.ChunkSize)
	applyFlag("buffer-size", &cfg.Receiver.QueueSize)

	// recv and send share the --port flag name; it means the listen
	// port for one and the target port for the other.
	if cmd.Flags().Changed("port") {
		port, _ := cmd.Flags().GetInt("port")
		cfg.Receiver.ListenPort = port
		cfg.Sender.TargetPort = port
	}
	if cmd.Flags().Changed("host") {
		host, _ := cmd.Flags().GetString("host")
		cfg.Sender.TargetHost = host
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// audioFlags registers the stream parameter flags shared by recv and send.
func audioFlags(cmd *cobra.Command) {
	cmd.Flags().Int("device", -1, "Audio device index (-1 for default, see 'carrysound devices')")
	cmd.Flags().Int("sample-rate", 44100, "Sample rate in Hz")
	cmd.Flags().Int("channels", 2, "Number of channels: 1=mono, 2=stereo")
	cmd.Flags().Int("chunk-size", 1024, "Frames per device period (must match the other endpoint)")
}

// initLogger creates the structured logger from logging configuration.
func initLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	var output *os.File
	switch cfg.Output {
	case "stderr":
		output = os.Stderr
	case "stdout", "":
		output = os.Stdout
	default:
		file, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file %s: %v, falling back to stdout\n", cfg.Output, err)
			output = os.Stdout
		} else {
			output = file
		}
	}

	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = slog.NewJSONHandler(output, opts)
	default:
		handler = slog.NewTextHandler(output, opts)
	}

	return slog.New(handler)
}
