package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shehabattia96/carry-sound/internal/device"
	"github.com/shehabattia96/carry-sound/internal/metrics"
	"github.com/shehabattia96/carry-sound/internal/sender"
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Capture audio from a device and stream it over UDP",
	RunE:  runSend,
}

func init() {
	audioFlags(sendCmd)
	sendCmd.Flags().String("host", "127.0.0.1", "Target host address")
	sendCmd.Flags().Int("port", 5005, "Target UDP port")
}

func runSend(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := initLogger(cfg.Logging)
	logger.Info("Starting sender",
		slog.String("target_host", cfg.Sender.TargetHost),
		slog.Int("target_port", cfg.Sender.TargetPort),
		slog.Int("device_id", cfg.Audio.DeviceID),
		slog.Int("sample_rate", cfg.Audio.SampleRate),
		slog.Int("channels", cfg.Audio.Channels),
		slog.Int("chunk_size", cfg.Audio.ChunkSize),
	)

	if err := device.Initialize(); err != nil {
		logger.Error("Audio subsystem init failed", slog.String("error", err.Error()))
		return err
	}
	defer device.Terminate()

	snd := sender.New(&cfg.Sender, cfg.Audio.ChunkSize, cfg.Audio.Channels, logger)
	if err := snd.Start(); err != nil {
		logger.Error("Failed to open socket", slog.String("error", err.Error()))
		return err
	}

	// Device open failure is fatal at startup: no capture begins.
	stream, err := device.OpenInput(cfg.Audio.DeviceID, float64(cfg.Audio.SampleRate),
		cfg.Audio.Channels, cfg.Audio.ChunkSize, snd.Transmit)
	if err != nil {
		logger.Error("Failed to open input device", slog.String("error", err.Error()))
		snd.Stop()
		return err
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		logger.Error("Failed to start capture stream", slog.String("error", err.Error()))
		snd.Stop()
		return err
	}
	logger.Info("Capture stream started, streaming audio")

	appMetrics := metrics.New()
	publisher := metrics.NewPublisher(appMetrics)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	statusLoop(ctx, func() {
		ss := snd.Statistics()
		publisher.PublishTransmit(metrics.TransmitSnapshot{
			ChunksSent: ss.ChunksSent,
			BytesSent:  ss.BytesSent,
			SendErrors: ss.SendErrors,
		})
		logger.Info("Status",
			slog.Uint64("chunks_sent", ss.ChunksSent),
			slog.Uint64("bytes_sent", ss.BytesSent),
			slog.Uint64("send_errors", ss.SendErrors),
		)
	})

	<-ctx.Done()
	logger.Info("Shutting down...")

	// Stop capture first so no callback touches the socket afterwards.
	if err := stream.Stop(); err != nil {
		logger.Warn("Error stopping capture stream", slog.String("error", err.Error()))
	}
	snd.Stop()

	ss := snd.Statistics()
	avgChunk := uint64(0)
	if ss.ChunksSent > 0 {
		avgChunk = ss.BytesSent / ss.ChunksSent
	}
	logger.Info("Run summary",
		slog.Uint64("chunks_sent", ss.ChunksSent),
		slog.Uint64("bytes_sent", ss.BytesSent),
		slog.Uint64("avg_chunk_bytes", avgChunk),
		slog.Uint64("send_errors", ss.SendErrors),
	)
	return nil
}
