// Package metrics defines the Prometheus metrics exposed by the
// monitoring endpoint. The real-time render path never touches the
// registry directly; owner-maintained counters are copied in
// periodically by the publisher loop.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the audio bridge.
type Metrics struct {
	// Ingest metrics
	ChunksReceived     prometheus.Counter
	BytesReceived      prometheus.Counter
	TruncatedDatagrams prometheus.Counter
	QueueEvictions     prometheus.Counter
	QueueDepth         prometheus.Gauge

	// Playback metrics
	Underruns    prometheus.Counter
	RenderFaults prometheus.Counter

	// Transmit metrics
	ChunksSent prometheus.Counter
	BytesSent  prometheus.Counter
	SendErrors prometheus.Counter
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		ChunksReceived: promauto.NewCounter(prometheus.CounterOpts{
			Name: "carrysound_chunks_received_total",
			Help: "Total number of audio datagrams received",
		}),
		BytesReceived: promauto.NewCounter(prometheus.CounterOpts{
			Name: "carrysound_bytes_received_total",
			Help: "Total number of payload bytes received",
		}),
		TruncatedDatagrams: promauto.NewCounter(prometheus.CounterOpts{
			Name: "carrysound_truncated_datagrams_total",
			Help: "Total number of datagrams truncated to a whole frame count",
		}),
		QueueEvictions: promauto.NewCounter(prometheus.CounterOpts{
			Name: "carrysound_queue_evictions_total",
			Help: "Total number of blocks dropped from the playback queue to admit newer audio",
		}),
		QueueDepth: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "carrysound_queue_depth_blocks",
			Help: "Current number of blocks in the playback queue",
		}),
		Underruns: promauto.NewCounter(prometheus.CounterOpts{
			Name: "carrysound_underruns_total",
			Help: "Total number of output periods serviced with no real audio data",
		}),
		RenderFaults: promauto.NewCounter(prometheus.CounterOpts{
			Name: "carrysound_render_faults_total",
			Help: "Total number of contained faults on the render path",
		}),
		ChunksSent: promauto.NewCounter(prometheus.CounterOpts{
			Name: "carrysound_chunks_sent_total",
			Help: "Total number of audio datagrams sent",
		}),
		BytesSent: promauto.NewCounter(prometheus.CounterOpts{
			Name: "carrysound_bytes_sent_total",
			Help: "Total number of payload bytes sent",
		}),
		SendErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "carrysound_send_errors_total",
			Help: "Total number of failed datagram sends",
		}),
	}
}

// counterTracker bridges a monotonic snapshot counter to a Prometheus
// counter, which only supports increments.
type counterTracker struct {
	last uint64
}

func (t *counterTracker) publish(c prometheus.Counter, current uint64) {
	if current > t.last {
		c.Add(float64(current - t.last))
		t.last = current
	}
}

// Publisher copies owner-maintained counters into the registry. It is
// driven from the status loop, off the real-time path.
type Publisher struct {
	metrics *Metrics

	chunksReceived     counterTracker
	bytesReceived      counterTracker
	truncatedDatagrams counterTracker
	queueEvictions     counterTracker
	underruns          counterTracker
	renderFaults       counterTracker
	chunksSent         counterTracker
	bytesSent          counterTracker
	sendErrors         counterTracker
}

// NewPublisher creates a publisher feeding m.
func NewPublisher(m *Metrics) *Publisher {
	return &Publisher{metrics: m}
}

// IngestSnapshot carries the receive-side counter values to publish.
type IngestSnapshot struct {
	ChunksReceived     uint64
	BytesReceived      uint64
	TruncatedDatagrams uint64
	QueueEvictions     uint64
	QueueDepth         int
	Underruns          uint64
	RenderFaults       uint64
}

// PublishIngest folds a receive-side snapshot into the registry.
func (p *Publisher) PublishIngest(s IngestSnapshot) {
	p.chunksReceived.publish(p.metrics.ChunksReceived, s.ChunksReceived)
	p.bytesReceived.publish(p.metrics.BytesReceived, s.BytesReceived)
	p.truncatedDatagrams.publish(p.metrics.TruncatedDatagrams, s.TruncatedDatagrams)
	p.queueEvictions.publish(p.metrics.QueueEvictions, s.QueueEvictions)
	p.underruns.publish(p.metrics.Underruns, s.Underruns)
	p.renderFaults.publish(p.metrics.RenderFaults, s.RenderFaults)
	p.metrics.QueueDepth.Set(float64(s.QueueDepth))
}

// TransmitSnapshot carries the send-side counter values to publish.
type TransmitSnapshot struct {
	ChunksSent uint64
	BytesSent  uint64
	SendErrors uint64
}

// PublishTransmit folds a send-side snapshot into the registry.
func (p *Publisher) PublishTransmit(s TransmitSnapshot) {
	p.chunksSent.publish(p.metrics.ChunksSent, s.ChunksSent)
	p.bytesSent.publish(p.metrics.BytesSent, s.BytesSent)
	p.sendErrors.publish(p.metrics.SendErrors, s.SendErrors)
}
