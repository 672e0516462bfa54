package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/campaign-insights/jobs"
)

// Enqueuer submits warmup tasks.
type Enqueuer interface {
	EnqueueDashboardWarmup(ctx context.Context, payload jobs.DashboardWarmupPayload) (*asynq.TaskInfo, error)
}

// WarmupOptions defines available flags for the warmup command.
type WarmupOptions struct {
	Locales []string
	Bump    bool
	Stdout  io.Writer
	Stderr  io.Writer
}

// WarmupCommand enqueues a dashboard warmup task for the worker.
func WarmupCommand(ctx context.Context, client Enqueuer, opts WarmupOptions) int {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if client == nil {
		_, _ = fmt.Fprintln(opts.Stderr, "warmup: queue client not configured")
		return ExitFailure
	}
	info, err := client.EnqueueDashboardWarmup(ctx, jobs.DashboardWarmupPayload{Locales: opts.Locales, Bump: opts.Bump})
	if errors.Is(err, asynq.ErrDuplicateTask) {
		_, _ = fmt.Fprintln(opts.Stdout, "warmup already queued")
		return ExitOK
	}
	if err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "warmup: %v\n", err)
		return ExitFailure
	}
	_, _ = fmt.Fprintf(opts.Stdout, "enqueued %s on %s (id %s)\n", info.Type, info.Queue, info.ID)
	return ExitOK
}
