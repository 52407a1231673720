package healthcheck

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Probe checks one dependency's liveness.
type Probe func(ctx context.Context) error

// HealthCheck answers GET /health from registered dependency probes.
type HealthCheck struct {
	probes map[string]Probe
}

// New creates a health check with no probes; with none registered the
// endpoint reports ok as long as the process serves requests.
func New() *HealthCheck {
	return &HealthCheck{probes: make(map[string]Probe)}
}

// AddProbe registers a named dependency probe.
func (hc *HealthCheck) AddProbe(name string, probe Probe) {
	hc.probes[name] = probe
}

// Handler intercepts health check requests and delegates everything else.
func (hc *HealthCheck) Handler(h http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		if IsHealthCheckRequest(r) {
			hc.ServeHTTP(w, r)

			return
		}

		h.ServeHTTP(w, r)
	}

	return http.HandlerFunc(fn)
}

// ServeHTTP runs every probe and reports per-dependency status.
func (hc *HealthCheck) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := make(map[string]string, len(hc.probes))
	for name, probe := range hc.probes {
		if err := probe(ctx); err != nil {
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
		} else {
			checks[name] = "ok"
		}
	}

	body := map[string]any{"status": "ok"}
	if status != http.StatusOK {
		body["status"] = "degraded"
	}
	if len(checks) > 0 {
		body["checks"] = checks
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// IsHealthCheckRequest reports whether the request targets the health endpoint.
func IsHealthCheckRequest(r *http.Request) bool {
	return r.Method == http.MethodGet && r.URL.Path == "/health"
}
