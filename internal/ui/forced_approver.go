package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/vvka-141/pgplan/pkg/pgplan"
)

// ForcedApprover approves non-interactively after a visible countdown,
// used when the --force flag is provided. The countdown leaves a window
// to cancel with Ctrl+C.
type ForcedApprover struct {
	out       io.Writer
	countdown time.Duration
}

// NewForcedApprover creates a ForcedApprover with the default countdown.
func NewForcedApprover() pgplan.Approver {
	return &ForcedApprover{out: os.Stderr, countdown: pgplan.DefaultForceApprovalCountdown}
}

// NewForcedApproverIO creates a ForcedApprover with explicit output and
// countdown, for tests.
func NewForcedApproverIO(out io.Writer, countdown time.Duration) pgplan.Approver {
	return &ForcedApprover{out: out, countdown: countdown}
}

// RequestApproval prints the warning, counts down and approves.
func (a *ForcedApprover) RequestApproval(ctx context.Context, subject string) (bool, error) {
	fmt.Fprintf(a.out, "\n⚠️  FORCED: about to %s\n", subject)

	for remaining := int(a.countdown.Seconds()); remaining > 0; remaining-- {
		fmt.Fprintf(a.out, "\rProceeding in %d seconds... (Press Ctrl+C to cancel)", remaining)
		select {
		case <-ctx.Done():
			fmt.Fprintln(a.out)
			return false, ctx.Err()
		case <-time.After(time.Second):
		}
	}

	fmt.Fprintf(a.out, "\r✓ Proceeding...                                        \n")
	return true, nil
}

var _ pgplan.Approver = (*ForcedApprover)(nil)
