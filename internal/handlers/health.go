package handlers

import (
	"net/http"
	"time"

	"github.com/shopmart/commerce/internal/repositories"
)

// BuildInfo describes the running binary for health reporting.
type BuildInfo struct {
	Version   string
	CommitSHA string
	StartedAt time.Time
}

// HealthHandlers serves liveness and readiness probes.
type HealthHandlers struct {
	pinger repositories.HealthRepository
	build  BuildInfo
	clock  func() time.Time
}

// HealthOption customises the health handlers.
type HealthOption func(*HealthHandlers)

// WithHealthPinger supplies the storage probe used by the readiness endpoint.
func WithHealthPinger(pinger repositories.HealthRepository) HealthOption {
	return func(h *HealthHandlers) {
		h.pinger = pinger
	}
}

// WithHealthBuildInfo attaches build metadata to health responses.
func WithHealthBuildInfo(info BuildInfo) HealthOption {
	return func(h *HealthHandlers) {
		h.build = info
	}
}

// WithHealthClock overrides the clock used for uptime calculation.
func WithHealthClock(clock func() time.Time) HealthOption {
	return func(h *HealthHandlers) {
		h.clock = clock
	}
}

// NewHealthHandlers constructs the health endpoints.
func NewHealthHandlers(opts ...HealthOption) *HealthHandlers {
	h := &HealthHandlers{clock: time.Now}
	for _, opt := range opts {
		opt(h)
	}
	if h.clock == nil {
		h.clock = time.Now
	}
	if h.build.StartedAt.IsZero() {
		h.build.StartedAt = h.clock()
	}
	return h
}

// Healthz reports process liveness with build metadata.
func (h *HealthHandlers) Healthz(w http.ResponseWriter, _ *http.Request) {
	now := h.clock()
	payload := map[string]any{
		"status":    "ok",
		"uptime":    now.Sub(h.build.StartedAt).String(),
		"timestamp": now.UTC().Format(time.RFC3339),
	}
	if h.build.Version != "" {
		payload["version"] = h.build.Version
	}
	if h.build.CommitSHA != "" {
		payload["commitSha"] = h.build.CommitSHA
	}
	writeJSONResponse(w, http.StatusOK, payload)
}

// Readyz reports readiness by probing durable storage.
func (h *HealthHandlers) Readyz(w http.ResponseWriter, r *http.Request) {
	payload := map[string]any{"status": "ok"}
	status := http.StatusOK

	if h.pinger != nil {
		started := h.clock()
		if err := h.pinger.Ping(r.Context()); err != nil {
			payload["status"] = "degraded"
			payload["details"] = []string{"storage: " + err.Error()}
			status = http.StatusServiceUnavailable
		} else {
			payload["checks"] = map[string]any{
				"storage": map[string]any{
					"status":  "ok",
					"latency": h.clock().Sub(started).String(),
				},
			}
		}
	}

	writeJSONResponse(w, status, payload)
}
