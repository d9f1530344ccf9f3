package scene

import (
	"context"
)

// FrameSource blocks until the surface is ready for the next frame.
type FrameSource interface {
	NextFrame(ctx context.Context) error
}

// Run drives s from frames: one Update per frame, and a redraw request for
// every frame in which the scene actually stepped. A sleeping scene keeps
// receiving frames but never requests a redraw. Run returns when ctx is done
// or the frame source fails.
func Run(ctx context.Context, s *Scene, frames FrameSource, redraw func(), step float64) error {
	for {
		if err := frames.NextFrame(ctx); err != nil {
			return err
		}
		if s.Update(step) && redraw != nil {
			redraw()
		}
	}
}
