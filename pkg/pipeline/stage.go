// Package pipeline provides the stage infrastructure shared by framereader's
// batch operations.
package pipeline

import (
	"context"
)

// Stage turns one input into one output, reading frames as it goes.
type Stage[In, Out any] interface {
	Execute(ctx context.Context, input In) (Out, error)
}

// FrameStage is a Stage that keeps the files it opened in the registry
// between calls. Close releases them.
type FrameStage[In, Out any] interface {
	Stage[In, Out]
	Close()
}

// StageFunc adapts a function to Stage.
type StageFunc[In, Out any] func(ctx context.Context, input In) (Out, error)

// Execute calls f.
func (f StageFunc[In, Out]) Execute(ctx context.Context, input In) (Out, error) {
	return f(ctx, input)
}

// ProgressFunc is called after each frame a stage finishes.
type ProgressFunc func(done, total int)

// Report calls f when it is set.
func (f ProgressFunc) Report(done, total int) {
	if f != nil {
		f(done, total)
	}
}
