package health

import (
	"context"
	"time"
)

type CheckFunc func(ctx context.Context) error

type Check struct {
	Name  string
	Probe CheckFunc
}

type Result struct {
	Name    string `json:"name"`
	Healthy bool   `json:"healthy"`
	Error   string `json:"error,omitempty"`
}

// ProbeRunner drives readiness checks against the service's dependencies.
// A single failing check marks the whole service unready.
type ProbeRunner struct {
	checks  []Check
	timeout time.Duration
}

func NewProbeRunner(timeout time.Duration, checks ...Check) *ProbeRunner {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &ProbeRunner{checks: checks, timeout: timeout}
}

func (p *ProbeRunner) Ready(ctx context.Context) (bool, []Result) {
	results := make([]Result, 0, len(p.checks))
	ready := true
	for _, check := range p.checks {
		cctx, cancel := context.WithTimeout(ctx, p.timeout)
		err := check.Probe(cctx)
		cancel()
		result := Result{Name: check.Name, Healthy: err == nil}
		if err != nil {
			result.Error = err.Error()
			ready = false
		}
		results = append(results, result)
	}
	return ready, results
}
