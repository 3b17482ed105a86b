package scanners

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/akadevbarki76-collab/scaling-parakeet/pkg/logger"
)

// Outcome is the result of scanning one target.
type Outcome struct {
	Target   string        `json:"target"`
	Report   string        `json:"report"`
	Err      error         `json:"-"`
	Duration time.Duration `json:"duration"`
}

// ScanAll runs t over targets with at most limit scans in flight. Outcomes
// keep the order of targets. A failing target does not stop the others.
func ScanAll(ctx context.Context, t Tool, targets []string, opts Options, limit int) []Outcome {
	if limit <= 0 {
		limit = 1
	}
	outcomes := make([]Outcome, len(targets))

	var g errgroup.Group
	g.SetLimit(limit)
	for i, target := range targets {
		g.Go(func() error {
			start := time.Now()
			report, err := t.Run(ctx, target, "", opts)
			outcomes[i] = Outcome{Target: target, Report: report, Err: err, Duration: time.Since(start)}
			if err != nil {
				logger.Warn("scan failed",
					logger.String("tool", t.Name()),
					logger.String("target", target),
					logger.Err(err))
			}
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}
