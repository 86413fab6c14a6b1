package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"kbmetrics/pkg/logger"
)

const (
	statusHealthy   = "healthy"
	statusDegraded  = "degraded"
	statusUnhealthy = "unhealthy"
)

// Checker is a dependency that can report its connectivity
type Checker interface {
	Health(ctx context.Context) error
}

// CheckerFunc adapts a function to Checker
type CheckerFunc func(ctx context.Context) error

// Health calls f
func (f CheckerFunc) Health(ctx context.Context) error { return f(ctx) }

// Handler provides health check endpoints
type Handler struct {
	log         *logger.Logger
	checkers    map[string]Checker
	startTime   time.Time
	serviceName string
	version     string
}

// New creates a new health check handler. checkers maps a component name
// (mongo, redis) to its probe; nil checkers are skipped.
func New(log *logger.Logger, checkers map[string]Checker, serviceName, version string) *Handler {
	active := make(map[string]Checker, len(checkers))
	for name, c := range checkers {
		if c != nil {
			active[name] = c
		}
	}

	return &Handler{
		log:         log,
		checkers:    active,
		startTime:   time.Now(),
		serviceName: serviceName,
		version:     version,
	}
}

// HealthStatus represents the overall health status
type HealthStatus struct {
	Status    string                     `json:"status"` // "healthy", "degraded", "unhealthy"
	Service   string                     `json:"service"`
	Version   string                     `json:"version"`
	Uptime    string                     `json:"uptime"`
	Timestamp string                     `json:"timestamp"`
	Checks    map[string]ComponentHealth `json:"checks"`
}

// ComponentHealth represents health of a single component
type ComponentHealth struct {
	Status       string `json:"status"`
	ResponseTime string `json:"response_time,omitempty"`
	Error        string `json:"error,omitempty"`
}

// HandleLiveness returns 200 OK if the process is running
func (h *Handler) HandleLiveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// HandleReadiness returns 503 unless every dependency is reachable
func (h *Handler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := h.check(ctx)
	code := http.StatusOK
	if status.healthy < len(status.Checks) {
		status.Status = statusUnhealthy
		code = http.StatusServiceUnavailable
		h.log.Warnw("Readiness check failed", "checks", status.Checks)
	}

	writeJSON(w, code, status.HealthStatus)
}

// HandleHealth returns detailed health status. Partial failure is reported
// as degraded with 200; total failure as unhealthy with 503.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	status := h.check(ctx)
	code := http.StatusOK
	switch {
	case len(status.Checks) > 0 && status.healthy == 0:
		status.Status = statusUnhealthy
		code = http.StatusServiceUnavailable
	case status.healthy < len(status.Checks):
		status.Status = statusDegraded
	}

	writeJSON(w, code, status.HealthStatus)
}

type checkResult struct {
	HealthStatus
	healthy int
}

func (h *Handler) check(ctx context.Context) checkResult {
	names := make([]string, 0, len(h.checkers))
	for name := range h.checkers {
		names = append(names, name)
	}
	sort.Strings(names)

	res := checkResult{HealthStatus: HealthStatus{
		Status:    statusHealthy,
		Service:   h.serviceName,
		Version:   h.version,
		Uptime:    time.Since(h.startTime).String(),
		Timestamp: time.Now().Format(time.RFC3339),
		Checks:    make(map[string]ComponentHealth, len(names)),
	}}

	for _, name := range names {
		c := h.probe(ctx, name, h.checkers[name])
		res.Checks[name] = c
		if c.Status == statusHealthy {
			res.healthy++
		}
	}
	return res
}

func (h *Handler) probe(ctx context.Context, name string, c Checker) ComponentHealth {
	start := time.Now()
	err := c.Health(ctx)
	elapsed := time.Since(start)

	if err != nil {
		h.log.Errorw("Health check failed", "component", name, "error", err, "elapsed", elapsed)
		return ComponentHealth{
			Status:       statusUnhealthy,
			ResponseTime: elapsed.String(),
			Error:        err.Error(),
		}
	}

	return ComponentHealth{
		Status:       statusHealthy,
		ResponseTime: elapsed.String(),
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
