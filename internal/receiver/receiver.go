package receiver

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shehabattia96/carry-sound/internal/config"
	"github.com/shehabattia96/carry-sound/internal/pcm"
	"github.com/shehabattia96/carry-sound/internal/playback"
)

// readDeadline bounds each receive so the loop observes a stop request
// promptly even when no traffic arrives.
const readDeadline = 1 * time.Second

// Receiver owns the inbound datagram socket and the background ingest
// loop. It is the sole writer of the playback queue.
type Receiver struct {
	cfg      *config.ReceiverConfig
	channels int
	logger   *slog.Logger
	queue    *playback.Queue

	conn   *net.UDPConn
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	chunksReceived     atomic.Uint64
	bytesReceived      atomic.Uint64
	truncatedDatagrams atomic.Uint64
}

// Statistics is a snapshot of the ingest counters. It is safe to read
// at any time but only consistent after Stop has joined the loop.
type Statistics struct {
	ChunksReceived     uint64 `json:"chunks_received"`
	BytesReceived      uint64 `json:"bytes_received"`
	TruncatedDatagrams uint64 `json:"truncated_datagrams"`
	QueueEvictions     uint64 `json:"queue_evictions"`
	QueueDepth         int    `json:"queue_depth"`
}

// New creates a receiver that decodes datagrams with the given channel
// count and appends them to queue.
func New(cfg *config.ReceiverConfig, channels int, logger *slog.Logger, queue *playback.Queue) *Receiver {
	ctx, cancel := context.WithCancel(context.Background())
	return &Receiver{
		cfg:      cfg,
		channels: channels,
		logger:   logger,
		queue:    queue,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start binds the UDP socket and launches the ingest loop.
func (r *Receiver) Start() error {
	addr, err := net.ResolveUDPAddr("udp", fmt.Sprintf("%s:%d", r.cfg.BindAddress, r.cfg.ListenPort))
	if err != nil {
		return fmt.Errorf("failed to resolve UDP address: %w", err)
	}

	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on UDP: %w", err)
	}
	r.conn = conn

	if err := r.conn.SetReadBuffer(r.cfg.SocketBuffer); err != nil {
		r.logger.Warn("Failed to set UDP read buffer size",
			slog.Int("socket_buffer", r.cfg.SocketBuffer),
			slog.String("error", err.Error()),
		)
	}

	r.logger.Info("Receiver listening",
		slog.String("address", addr.String()),
		slog.Int("socket_buffer", r.cfg.SocketBuffer),
		slog.Int("queue_size", r.cfg.QueueSize),
	)

	r.wg.Add(1)
	go r.ingestLoop()

	return nil
}

// Stop signals the ingest loop, closes the socket and waits for the
// loop to exit. Statistics read after Stop returns are final.
func (r *Receiver) Stop() {
	r.cancel()

	if r.conn != nil {
		if err := r.conn.Close(); err != nil {
			r.logger.Warn("Error closing UDP connection", slog.String("error", err.Error()))
		}
	}

	r.wg.Wait()

	stats := r.Statistics()
	r.logger.Info("Receiver stopped",
		slog.Uint64("chunks_received", stats.ChunksReceived),
		slog.Uint64("bytes_received", stats.BytesReceived),
		slog.Uint64("truncated_datagrams", stats.TruncatedDatagrams),
		slog.Uint64("queue_evictions", stats.QueueEvictions),
	)
}

// LocalAddr returns the bound socket address, valid after Start.
func (r *Receiver) LocalAddr() net.Addr {
	return r.conn.LocalAddr()
}

// ingestLoop receives datagrams until the context is cancelled. Each
// iteration is bounded by the read deadline; deadline expiry is not an
// error, just a chance to observe shutdown.
func (r *Receiver) ingestLoop() {
	defer r.wg.Done()

	buffer := make([]byte, pcm.MaxDatagramSize)

	for {
		select {
		case <-r.ctx.Done():
			return
		default:
		}

		if err := r.conn.SetReadDeadline(time.Now().Add(readDeadline)); err != nil {
			r.logger.Error("Failed to set read deadline", slog.String("error", err.Error()))
			continue
		}

		n, _, err := r.conn.ReadFromUDP(buffer)
		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				continue
			}

			// Errors after a stop request are socket-teardown noise.
			select {
			case <-r.ctx.Done():
				return
			default:
				r.logger.Error("Failed to read UDP datagram", slog.String("error", err.Error()))
				continue
			}
		}

		r.chunksReceived.Add(1)
		r.bytesReceived.Add(uint64(n))

		res, err := pcm.Decode(buffer[:n], r.channels)
		if err != nil {
			r.logger.Error("Failed to decode datagram",
				slog.Int("payload_size", n),
				slog.String("error", err.Error()),
			)
			continue
		}
		if res.Truncated > 0 {
			r.truncatedDatagrams.Add(1)
			r.logger.Debug("Truncated malformed datagram",
				slog.Int("payload_size", n),
				slog.Int("dropped_bytes", res.Truncated),
			)
		}
		if res.Block.Frames() == 0 {
			continue
		}

		r.queue.Push(res.Block)
	}
}

// Statistics returns a snapshot of the ingest counters.
func (r *Receiver) Statistics() Statistics {
	return Statistics{
		ChunksReceived:     r.chunksReceived.Load(),
		BytesReceived:      r.bytesReceived.Load(),
		TruncatedDatagrams: r.truncatedDatagrams.Load(),
		QueueEvictions:     r.queue.Evicted(),
		QueueDepth:         r.queue.Len(),
	}
}
