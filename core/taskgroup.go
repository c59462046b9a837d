package core

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// TaskGroup tracks the per-message pipelines spawned by the watcher so that
// the orchestrator can drain them on shutdown. Go never blocks the caller.
type TaskGroup struct {
	eg errgroup.Group
}

func NewTaskGroup() *TaskGroup {
	return &TaskGroup{}
}

// Go runs f in a new goroutine. Pipelines report their own failures, so f has no error.
func (g *TaskGroup) Go(ctx context.Context, f func()) {
	recordInflight(ctx, 1)
	g.eg.Go(func() error {
		defer recordInflight(context.WithoutCancel(ctx), -1)
		f()
		return nil
	})
}

// Wait blocks until every spawned task has returned.
func (g *TaskGroup) Wait() {
	_ = g.eg.Wait()
}
