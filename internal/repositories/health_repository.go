package repositories

import (
	"context"
	"errors"
	"time"
)

const defaultProbeTimeout = 1500 * time.Millisecond

// HealthRepository reports readiness of the persistence backend.
type HealthRepository interface {
	Ping(ctx context.Context) error
}

type probeHealthRepository struct {
	probe   func(context.Context) error
	timeout time.Duration
}

var _ HealthRepository = (*probeHealthRepository)(nil)

// NewProbeHealthRepository constructs a HealthRepository around the provided probe function.
func NewProbeHealthRepository(probe func(context.Context) error, timeout time.Duration) (HealthRepository, error) {
	if probe == nil {
		return nil, errors.New("health repository: probe function is required")
	}
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}
	return &probeHealthRepository{probe: probe, timeout: timeout}, nil
}

func (r *probeHealthRepository) Ping(ctx context.Context) error {
	if ctx == nil {
		return errors.New("health repository: context is required")
	}
	probeCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.probe(probeCtx)
}
