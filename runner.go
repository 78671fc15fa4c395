package canopy

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/canopy/pkg/domain"
)

// Runner drives a tree against one state until the root settles on a
// terminal status. It exists for hosts with nothing better to do
// between passes (the CLI, tests); long-lived services usually own
// their tick cadence and call Execute themselves.
type Runner struct {
	// MaxPasses caps the number of executions; 0 means no cap.
	MaxPasses int
	// Interval is the pause between passes while the root keeps
	// reporting RUNNING.
	Interval time.Duration
}

// Run executes passes until the root returns SUCCESS or FAILED, the
// context is canceled, or MaxPasses is reached. It returns the last
// status and the number of passes performed.
func (r *Runner) Run(ctx context.Context, tree *Tree, state *domain.State) (domain.Status, int, error) {
	passes := 0
	for {
		status, err := tree.ExecuteContext(ctx, state)
		passes++
		if err != nil {
			return status, passes, err
		}
		if status.Terminal() {
			return status, passes, nil
		}

		if r.MaxPasses > 0 && passes >= r.MaxPasses {
			return status, passes, fmt.Errorf("still %s after %d passes", status, passes)
		}

		if r.Interval > 0 {
			select {
			case <-time.After(r.Interval):
			case <-ctx.Done():
				return status, passes, ctx.Err()
			}
		} else if err := ctx.Err(); err != nil {
			return status, passes, err
		}
	}
}
