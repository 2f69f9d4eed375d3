package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/shehabattia96/carry-sound/internal/device"
	"github.com/shehabattia96/carry-sound/internal/metrics"
	"github.com/shehabattia96/carry-sound/internal/monitor"
	"github.com/shehabattia96/carry-sound/internal/playback"
	"github.com/shehabattia96/carry-sound/internal/receiver"
)

const statusInterval = 10 * time.Second

var recvCmd = &cobra.Command{
	Use:   "recv",
	Short: "Receive a PCM stream over UDP and play it",
	RunE:  runRecv,
}

func init() {
	audioFlags(recvCmd)
	recvCmd.Flags().Int("port", 5005, "UDP port to listen on")
	recvCmd.Flags().Int("buffer-size", 10, "Playback queue capacity in blocks")
}

func runRecv(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := initLogger(cfg.Logging)
	logger.Info("Starting receiver",
		slog.Int("listen_port", cfg.Receiver.ListenPort),
		slog.Int("device_id", cfg.Audio.DeviceID),
		slog.Int("sample_rate", cfg.Audio.SampleRate),
		slog.Int("channels", cfg.Audio.Channels),
		slog.Int("chunk_size", cfg.Audio.ChunkSize),
		slog.Int("queue_size", cfg.Receiver.QueueSize),
	)

	if err := device.Initialize(); err != nil {
		logger.Error("Audio subsystem init failed", slog.String("error", err.Error()))
		return err
	}
	defer device.Terminate()

	queue := playback.NewQueue(cfg.Receiver.QueueSize)
	engine := playback.NewEngine(queue, cfg.Audio.Channels)

	// Device open failure is fatal at startup: no loops are started.
	stream, err := device.OpenOutput(cfg.Audio.DeviceID, float64(cfg.Audio.SampleRate),
		cfg.Audio.Channels, cfg.Audio.ChunkSize, engine.Render)
	if err != nil {
		logger.Error("Failed to open output device", slog.String("error", err.Error()))
		return err
	}
	defer stream.Close()

	recv := receiver.New(&cfg.Receiver, cfg.Audio.Channels, logger, queue)
	if err := recv.Start(); err != nil {
		logger.Error("Failed to start receiver", slog.String("error", err.Error()))
		return err
	}

	if err := stream.Start(); err != nil {
		logger.Error("Failed to start playback stream", slog.String("error", err.Error()))
		recv.Stop()
		return err
	}
	logger.Info("Playback stream started, waiting for audio")

	appMetrics := metrics.New()
	publisher := metrics.NewPublisher(appMetrics)

	var mon *monitor.Server
	if cfg.Monitor.Enabled {
		mon = monitor.New(cfg.Monitor, logger, cfg, func() monitor.Stats {
			rs := recv.Statistics()
			es := engine.Stats()
			return monitor.Stats{Receiver: &rs, Playback: &es}
		})
		if err := mon.Start(); err != nil {
			logger.Error("Failed to start monitoring server", slog.String("error", err.Error()))
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	statusLoop(ctx, func() {
		rs := recv.Statistics()
		es := engine.Stats()
		publisher.PublishIngest(metrics.IngestSnapshot{
			ChunksReceived:     rs.ChunksReceived,
			BytesReceived:      rs.BytesReceived,
			TruncatedDatagrams: rs.TruncatedDatagrams,
			QueueEvictions:     rs.QueueEvictions,
			QueueDepth:         es.QueueDepth,
			Underruns:          es.Underruns,
			RenderFaults:       es.RenderFaults,
		})
		logger.Info("Status",
			slog.Uint64("chunks_received", rs.ChunksReceived),
			slog.Uint64("bytes_received", rs.BytesReceived),
			slog.Int("queue_depth", es.QueueDepth),
			slog.Uint64("underruns", es.Underruns),
		)
	})

	<-ctx.Done()
	logger.Info("Shutting down...")

	// Stopping the stream first guarantees no further render callbacks,
	// then the ingest loop is joined before final counters are read.
	if err := stream.Stop(); err != nil {
		logger.Warn("Error stopping playback stream", slog.String("error", err.Error()))
	}
	recv.Stop()

	if mon != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := mon.Stop(shutdownCtx); err != nil {
			logger.Error("Error stopping monitoring server", slog.String("error", err.Error()))
		}
	}

	logRunSummary(logger, recv.Statistics(), engine.Stats())
	return nil
}

// statusLoop runs fn every statusInterval until ctx is cancelled.
func statusLoop(ctx context.Context, fn func()) {
	go func() {
		ticker := time.NewTicker(statusInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				fn()
			}
		}
	}()
}

// logRunSummary prints the final run statistics once on clean shutdown.
func logRunSummary(logger *slog.Logger, rs receiver.Statistics, es playback.EngineStats) {
	avgChunk := uint64(0)
	if rs.ChunksReceived > 0 {
		avgChunk = rs.BytesReceived / rs.ChunksReceived
	}
	logger.Info("Run summary",
		slog.Uint64("chunks_received", rs.ChunksReceived),
		slog.Uint64("bytes_received", rs.BytesReceived),
		slog.Uint64("avg_chunk_bytes", avgChunk),
		slog.Uint64("underruns", es.Underruns),
		slog.Uint64("queue_evictions", rs.QueueEvictions),
		slog.Uint64("truncated_datagrams", rs.TruncatedDatagrams),
	)
}
