// Package probe checks single resources of the development environment:
// containers, networks, TCP ports and HTTP endpoints. Probes never return
// errors, every failure is folded into an unhealthy models.ProbeResult.
package probe

import (
	"context"
	"time"

	"devenv-keeper/internal/models"

	"golang.org/x/sync/errgroup"
)

// Probe a stateless check of one resource, safe for concurrent use
type Probe interface {
	Name() string
	Target() string
	Kind() models.ProbeKind
	Run(ctx context.Context) models.ProbeResult
}

// Clock time source of the HTTP probe retry loop
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) Now() time.Time                         { return time.Now() }
func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// RealClock wall clock
var RealClock Clock = realClock{}

// Observer is called once per finished probe
type Observer func(res models.ProbeResult)

/**
 * Run probes concurrently and return their results in input order
 * @param {Context} ctx - Bounds every probe
 * @param {[]Probe} probes - Probes to run
 * @param {Observer} observe - Optional hook called for each result
 * @returns {[]ProbeResult} Returns one result per probe, same order as probes
 * @description
 * - Each goroutine owns one slot of a pre-sized slice
 * - Results are read only after Wait, so no locking is needed
 */
func RunAll(ctx context.Context, probes []Probe, observe Observer) []models.ProbeResult {
	results := make([]models.ProbeResult, len(probes))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range probes {
		g.Go(func() error {
			results[i] = p.Run(gctx)
			return nil
		})
	}
	_ = g.Wait()
	if observe != nil {
		for _, res := range results {
			observe(res)
		}
	}
	return results
}
