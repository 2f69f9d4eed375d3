package sender

import (
	"fmt"
	"log/slog"
	"net"
	"sync/atomic"

	"github.com/shehabattia96/carry-sound/internal/config"
	"github.com/shehabattia96/carry-sound/internal/pcm"
)

// Sender serializes capture periods and transmits them as UDP
// datagrams. The serialization buffer is preallocated once so Transmit
// does not allocate on the capture callback path.
type Sender struct {
	cfg    *config.SenderConfig
	logger *slog.Logger

	conn    *net.UDPConn
	payload []byte

	chunksSent atomic.Uint64
	bytesSent  atomic.Uint64
	sendErrors atomic.Uint64
}

// Statistics is a snapshot of the transmit counters.
type Statistics struct {
	ChunksSent uint64 `json:"chunks_sent"`
	BytesSent  uint64 `json:"bytes_sent"`
	SendErrors uint64 `json:"send_errors"`
}

// New creates a sender targeting the configured host:port. chunkSize
// and channels size the preallocated wire buffer; their product must
// fit a single datagram (enforced by config validation).
func New(cfg *config.SenderConfig, chunkSize, channels int, logger *slog.Logger) *Sender {
	return &Sender{
		cfg:     cfg,
		logger:  logger,
		payload: make([]byte, pcm.DatagramSize(chunkSize, channels)),
	}
}

// Start resolves the target and opens the outbound socket.
func (s *Sender) Start() error {
	addr, err := net.ResolveUDPAddr("udp", fmt.Sprintf("%s:%d", s.cfg.TargetHost, s.cfg.TargetPort))
	if err != nil {
		return fmt.Errorf("failed to resolve target address: %w", err)
	}

	conn, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		return fmt.Errorf("failed to open UDP socket: %w", err)
	}
	s.conn = conn

	if err := s.conn.SetWriteBuffer(s.cfg.SocketBuffer); err != nil {
		s.logger.Warn("Failed to set UDP write buffer size",
			slog.Int("socket_buffer", s.cfg.SocketBuffer),
			slog.String("error", err.Error()),
		)
	}

	s.logger.Info("Sender ready",
		slog.String("target", addr.String()),
		slog.Int("socket_buffer", s.cfg.SocketBuffer),
	)

	return nil
}

// Transmit serializes one capture period and sends it. Failures are
// counted and logged but never propagated; the capture loop continues.
func (s *Sender) Transmit(samples []float32) {
	n := pcm.EncodeTo(s.payload, samples)

	if _, err := s.conn.Write(s.payload[:n]); err != nil {
		s.sendErrors.Add(1)
		s.logger.Error("Failed to send datagram",
			slog.Int("payload_size", n),
			slog.String("error", err.Error()),
		)
		return
	}

	s.chunksSent.Add(1)
	s.bytesSent.Add(uint64(n))
}

// Stop closes the socket and logs final counters.
func (s *Sender) Stop() {
	if s.conn != nil {
		if err := s.conn.Close(); err != nil {
			s.logger.Warn("Error closing UDP socket", slog.String("error", err.Error()))
		}
	}

	stats := s.Statistics()
	s.logger.Info("Sender stopped",
		slog.Uint64("chunks_sent", stats.ChunksSent),
		slog.Uint64("bytes_sent", stats.BytesSent),
		slog.Uint64("send_errors", stats.SendErrors),
	)
}

// Statistics returns a snapshot of the transmit counters.
func (s *Sender) Statistics() Statistics {
	return Statistics{
		ChunksSent: s.chunksSent.Load(),
		BytesSent:  s.bytesSent.Load(),
		SendErrors: s.sendErrors.Load(),
	}
}
