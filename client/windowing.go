package client

import (
	"context"
	"errors"

	"github.com/milk9111/desktop-thingies/render"
	"github.com/milk9111/desktop-thingies/scene"
)

var (
	ErrUnknownDisplay = errors.New("client: unknown display")
	ErrNoMonitors     = errors.New("client: no monitors connected")
	ErrSingleSurface  = errors.New("client: backend supports a single surface")
)

// Monitor is a connected display. Width and Height are in pixels.
type Monitor struct {
	ID     string
	Width  int
	Height int
}

// Windowing enumerates displays and creates one borderless, full-monitor
// background surface per target display.
type Windowing interface {
	Monitors() ([]Monitor, error)
	CreateSurface(m Monitor) (Surface, error)
}

// Surface is one monitor's window. NextFrame blocks until the surface is
// about to present; it returns an error once the surface is gone.
type Surface interface {
	NextFrame(ctx context.Context) error
	RequestRedraw()
	SetHandler(h Handler)
	SetCursor(c scene.Cursor)
	Close() error
}

// Handler receives surface-local pointer events and draw requests.
type Handler interface {
	Press(x, y float64)
	Release(x, y float64)
	Move(x, y float64)
	Scroll(dy float64)
	Draw(c render.Canvas)
}

var _ Handler = (*scene.Scene)(nil)
