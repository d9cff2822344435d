package server

import (
	"context"
	"sync"

	"github.com/sourcegraph/conc/pool"
)

// HealthProbe checks one dependency.
type HealthProbe interface {
	Probe(ctx context.Context) error
}

// ProbeFunc adapts a function to HealthProbe.
type ProbeFunc func(ctx context.Context) error

// Probe implements the HealthProbe interface.
func (f ProbeFunc) Probe(ctx context.Context) error {
	return f(ctx)
}

// HealthChecker runs every named probe concurrently.
type HealthChecker struct {
	probes map[string]HealthProbe
}

// NewHealthChecker builds a checker over the named probes. Nil probes are skipped.
func NewHealthChecker(probes map[string]HealthProbe) *HealthChecker {
	filtered := make(map[string]HealthProbe, len(probes))
	for name, probe := range probes {
		if probe != nil {
			filtered[name] = probe
		}
	}
	return &HealthChecker{probes: filtered}
}

// Check returns the failure message per probe name; an empty map means healthy.
func (h *HealthChecker) Check(ctx context.Context) map[string]string {
	failures := make(map[string]string)
	if h == nil || len(h.probes) == 0 {
		return failures
	}

	var mu sync.Mutex
	p := pool.New().WithContext(ctx)
	for name, probe := range h.probes {
		p.Go(func(ctx context.Context) error {
			if err := probe.Probe(ctx); err != nil {
				mu.Lock()
				failures[name] = err.Error()
				mu.Unlock()
			}
			return nil
		})
	}
	_ = p.Wait()

	return failures
}
