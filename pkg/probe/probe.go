// Package probe runs preflight checks before a flight is simulated.
package probe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// checkTimeout bounds a single check when the caller's context has no deadline.
const checkTimeout = 5 * time.Second

// ErrPreflight is wrapped by the error AnalyzeResults returns.
var ErrPreflight = errors.New("preflight failed")

// CheckFunc performs one check and returns nil when it passes.
type CheckFunc func(ctx context.Context) error

// Probe is a single named check.
type Probe struct {
	Name     string
	Check    CheckFunc
	Critical bool // a failure stops the flight; otherwise it is only logged
}

// Result holds the outcome of a single probe.
type Result struct {
	Probe    Probe
	Error    error
	Duration time.Duration
}

// Passed reports whether the check succeeded.
func (r Result) Passed() bool {
	return r.Error == nil
}

// Run executes the probes in order. A cancelled ctx fails the remaining
// probes with the context error without calling them.
func Run(ctx context.Context, probes []Probe) []Result {
	results := make([]Result, len(probes))

	for i, p := range probes {
		if err := ctx.Err(); err != nil {
			results[i] = Result{Probe: p, Error: err}
			continue
		}

		start := time.Now()
		checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
		err := p.Check(checkCtx)
		cancel()

		results[i] = Result{
			Probe:    p,
			Error:    err,
			Duration: time.Since(start),
		}
	}

	return results
}

// AnalyzeResults logs every result and joins the failures of critical probes.
func AnalyzeResults(results []Result) error {
	var critical []error
	var failed int

	for _, r := range results {
		attrs := []any{"probe", r.Probe.Name, "took", r.Duration.Round(time.Microsecond)}
		if r.Passed() {
			slog.Debug("preflight pass", attrs...)
			continue
		}
		failed++
		attrs = append(attrs, "error", r.Error)
		if r.Probe.Critical {
			slog.Error("preflight fail", attrs...)
			critical = append(critical, fmt.Errorf("%s: %w", r.Probe.Name, r.Error))
		} else {
			slog.Warn("preflight warning", attrs...)
		}
	}

	slog.Info("preflight checks", "total", len(results), "failed", failed, "critical", len(critical))

	if len(critical) > 0 {
		return fmt.Errorf("%w: %w", ErrPreflight, errors.Join(critical...))
	}
	return nil
}
