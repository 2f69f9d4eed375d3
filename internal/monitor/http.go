package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shehabattia96/carry-sound/internal/config"
	"github.com/shehabattia96/carry-sound/internal/playback"
	"github.com/shehabattia96/carry-sound/internal/receiver"
	"github.com/shehabattia96/carry-sound/internal/sender"
)

// Stats aggregates the runtime counters of whichever components the
// running mode has. Absent components stay nil and are omitted.
type Stats struct {
	Receiver *receiver.Statistics  `json:"receiver,omitempty"`
	Playback *playback.EngineStats `json:"playback,omitempty"`
	Sender   *sender.Statistics    `json:"sender,omitempty"`
}

// Server provides the HTTP monitoring endpoints.
type Server struct {
	server *http.Server
	logger *slog.Logger
	config *config.Config
	stats  func() Stats

	startTime time.Time
}

// New creates a monitoring server. stats is called per request and
// must be safe for concurrent use.
func New(cfg config.MonitorConfig, logger *slog.Logger, appConfig *config.Config, stats func() Stats) *Server {
	s := &Server{
		logger:    logger,
		config:    appConfig,
		stats:     stats,
		startTime: time.Now(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/stats", s.handleStats)
	mux.HandleFunc("/config", s.handleConfig)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/", s.handleRoot)

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Address, cfg.Port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start starts the monitoring server.
func (s *Server) Start() error {
	s.logger.Info("Starting monitoring server",
		slog.String("address", s.server.Addr),
	)

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("Monitoring server error", slog.String("error", err.Error()))
		}
	}()

	return nil
}

// Stop gracefully stops the monitoring server.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping monitoring server...")

	return s.server.Shutdown(ctx)
}

// handleHealth implements the /health endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	health := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"uptime":    time.Since(s.startTime).String(),
		"stats":     s.stats(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(health)
}

// handleStats implements the /stats endpoint.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]interface{}{
		"uptime":    time.Since(s.startTime).String(),
		"timestamp": time.Now().UTC(),
		"stats":     s.stats(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// handleConfig implements the /config endpoint.
func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	effective := map[string]interface{}{
		"receiver": map[string]interface{}{
			"listen_port":   s.config.Receiver.ListenPort,
			"bind_address":  s.config.Receiver.BindAddress,
			"socket_buffer": s.config.Receiver.SocketBuffer,
			"queue_size":    s.config.Receiver.QueueSize,
		},
		"sender": map[string]interface{}{
			"target_host":   s.config.Sender.TargetHost,
			"target_port":   s.config.Sender.TargetPort,
			"socket_buffer": s.config.Sender.SocketBuffer,
		},
		"audio": map[string]interface{}{
			"device_id":   s.config.Audio.DeviceID,
			"sample_rate": s.config.Audio.SampleRate,
			"channels":    s.config.Audio.Channels,
			"chunk_size":  s.config.Audio.ChunkSize,
		},
		"logging": map[string]interface{}{
			"level":  s.config.Logging.Level,
			"format": s.config.Logging.Format,
			"output": s.config.Logging.Output,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(effective)
}

// handleRoot implements the / endpoint with endpoint documentation.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	apiDoc := map[string]interface{}{
		"service": "carry-sound",
		"endpoints": map[string]interface{}{
			"GET /":        "endpoint documentation",
			"GET /health":  "service health check",
			"GET /stats":   "runtime statistics",
			"GET /config":  "effective configuration",
			"GET /metrics": "Prometheus metrics",
		},
		"timestamp": time.Now().UTC(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(apiDoc)
}
