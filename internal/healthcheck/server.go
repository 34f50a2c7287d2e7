package healthcheck

import (
	"context"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/pkg/utils"
)

// Probe reports whether one dependency is ready. Its result shows up in
// the readiness details under the probe's name.
type Probe func(ctx context.Context) error

// Server is the operational HTTP endpoint: liveness, readiness and
// optionally the metrics handler. It listens on its own port, separate
// from the action gateway.
type Server struct {
	httpServer *http.Server
	mux        *http.ServeMux
	logger     *zap.Logger

	mu     sync.RWMutex
	probes map[string]Probe
}

// HealthResponse is the body of /health and /ready.
type HealthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// NewServer creates a health check server listening on the given port.
func NewServer(port string, logger *zap.Logger) *Server {
	mux := http.NewServeMux()

	server := &Server{
		httpServer: &http.Server{
			Addr:    ":" + port,
			Handler: mux,
		},
		mux:    mux,
		logger: logger,
		probes: make(map[string]Probe),
	}

	mux.HandleFunc("/health", server.handleHealth)
	mux.HandleFunc("/ready", server.handleReady)

	return server
}

// RegisterMetricsHandler adds the /metrics endpoint handler.
// Should only be called if metrics are enabled.
func (s *Server) RegisterMetricsHandler(handler http.Handler) {
	s.logger.Info("Registering /metrics endpoint")
	s.mux.Handle("/metrics", handler)
}

// RegisterProbe adds a named readiness probe. All registered probes
// must pass for /ready to return 200.
func (s *Server) RegisterProbe(name string, probe Probe) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.probes[name] = probe
}

// Start begins the HTTP server
func (s *Server) Start() {
	go func() {
		s.logger.Info("Starting health check server", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("Health check server error", zap.Error(err))
		}
	}()
}

// Stop gracefully shuts down the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping health check server")
	return s.httpServer.Shutdown(ctx)
}

// handleHealth handles the /health endpoint for liveness probes
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:  "UP",
		Version: "1.0.0",
	}

	utils.WriteJSONResponse(w, http.StatusOK, resp)
}

// handleReady handles the /ready endpoint for readiness probes
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	probes := make(map[string]Probe, len(s.probes))
	for name, probe := range s.probes {
		probes[name] = probe
	}
	s.mu.RUnlock()

	details := map[string]string{
		"timestamp": utils.FormatISO8601(utils.Now()),
	}
	status := http.StatusOK
	overall := "READY"

	for name, probe := range probes {
		if err := probe(r.Context()); err != nil {
			details[name] = err.Error()
			status = http.StatusServiceUnavailable
			overall = "NOT_READY"
		} else {
			details[name] = "ok"
		}
	}

	utils.WriteJSONResponse(w, status, HealthResponse{
		Status:  overall,
		Details: details,
	})
}
