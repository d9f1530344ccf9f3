package main

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/desktop-thingies/client"
	"github.com/milk9111/desktop-thingies/render"
	"github.com/milk9111/desktop-thingies/scene"
)

var errWindowClosed = errors.New("window closed")

// backend is the ebiten windowing backend. ebiten drives a single window per
// process, so it hands out at most one surface.
type backend struct {
	logger *log.Logger
	debug  bool
	tps    int

	mu       sync.Mutex
	monitors map[string]*ebiten.MonitorType
	surface  *surface
	created  chan *surface
}

func newBackend(logger *log.Logger, tps int, debug bool) *backend {
	return &backend{
		logger:  logger,
		debug:   debug,
		tps:     tps,
		created: make(chan *surface, 1),
	}
}

func (b *backend) Monitors() ([]client.Monitor, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	found := ebiten.AppendMonitors(nil)
	names := make([]string, len(found))
	for i, m := range found {
		names[i] = m.Name()
	}
	ids := monitorIDs(names)

	b.monitors = make(map[string]*ebiten.MonitorType, len(found))
	out := make([]client.Monitor, 0, len(found))
	for i, m := range found {
		w, h := m.Size()
		b.monitors[ids[i]] = m
		out = append(out, client.Monitor{ID: ids[i], Width: w, Height: h})
	}
	return out, nil
}

// monitorIDs makes monitor names unique by suffixing repeats with a counter,
// skipping any candidate another monitor already uses.
func monitorIDs(names []string) []string {
	taken := make(map[string]bool, len(names))
	for _, name := range names {
		taken[name] = true
	}
	used := make(map[string]bool, len(names))
	ids := make([]string, len(names))
	for i, orig := range names {
		name := orig
		if name == "" {
			name = fmt.Sprintf("monitor-%d", i)
		}
		id := name
		for n := 2; used[id] || (id != orig && taken[id]); n++ {
			id = fmt.Sprintf("%s-%d", name, n)
		}
		used[id] = true
		ids[i] = id
	}
	return ids
}

func (b *backend) CreateSurface(m client.Monitor) (client.Surface, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.surface != nil {
		return nil, client.ErrSingleSurface
	}
	mt, ok := b.monitors[m.ID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", client.ErrUnknownDisplay, m.ID)
	}

	ebiten.SetMonitor(mt)
	ebiten.SetWindowDecorated(false)
	ebiten.SetWindowSize(m.Width, m.Height)
	ebiten.SetWindowPosition(0, 0)
	ebiten.SetWindowTitle("desktop-thingies " + m.ID)
	ebiten.SetTPS(b.tps)
	ebiten.SetScreenClearedEveryFrame(false)
	ebiten.SetRunnableOnUnfocused(true)

	s := &surface{
		monitor: m,
		logger:  b.logger.With("display", m.ID),
		debug:   b.debug,
		frames:  make(chan struct{}, 1),
		done:    make(chan struct{}),
		sprites: render.NewSpriteCache(),
	}
	b.surface = s
	b.created <- s
	b.logger.Info("surface created", "display", m.ID, "size", fmt.Sprintf("%dx%d", m.Width, m.Height))
	return s, nil
}

// Run runs the client against this backend. ebiten has to own the main
// goroutine, so the client runs alongside it and the window opens once the
// client has created its surface.
func (b *backend) Run(ctx context.Context, run func(context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errc := make(chan error, 1)
	go func() { errc <- run(ctx) }()

	var s *surface
	select {
	case s = <-b.created:
	case err := <-errc:
		return err
	}

	err := ebiten.RunGameWithOptions(s, &ebiten.RunGameOptions{
		ScreenTransparent: true,
		SkipTaskbar:       true,
		InitUnfocused:     true,
	})
	s.markDone()
	cancel()

	runErr := <-errc
	if err != nil {
		return err
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) && !errors.Is(runErr, errWindowClosed) {
		return runErr
	}
	return nil
}

// surface is the ebiten.Game for one monitor. Pointer input is polled in
// Update and forwarded to the bound handler; Draw only repaints when the
// frame loop asked for it, so a sleeping scene leaves the last frame up.
type surface struct {
	monitor client.Monitor
	logger  *log.Logger
	debug   bool

	frames   chan struct{}
	done     chan struct{}
	doneOnce sync.Once
	redraw   atomic.Bool
	closed   atomic.Bool
	cursor   atomic.Int32

	mu      sync.Mutex
	handler client.Handler

	sprites     *render.SpriteCache
	lastX       int
	lastY       int
	shownCursor scene.Cursor
}

func (s *surface) NextFrame(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.done:
		return fmt.Errorf("surface %s: %w", s.monitor.ID, errWindowClosed)
	case <-s.frames:
		return nil
	}
}

func (s *surface) RequestRedraw() {
	s.redraw.Store(true)
}

func (s *surface) SetHandler(h client.Handler) {
	s.mu.Lock()
	s.handler = h
	s.mu.Unlock()
}

func (s *surface) SetCursor(c scene.Cursor) {
	s.cursor.Store(int32(c))
}

func (s *surface) Close() error {
	if !s.closed.Swap(true) {
		s.logger.Debug("closing surface")
	}
	return nil
}

func (s *surface) markDone() {
	s.doneOnce.Do(func() { close(s.done) })
}

func (s *surface) currentHandler() client.Handler {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handler
}

func (s *surface) Update() error {
	if s.closed.Load() {
		return ebiten.Termination
	}

	select {
	case s.frames <- struct{}{}:
	default:
	}

	h := s.currentHandler()
	if h == nil {
		return nil
	}
	s.handleInput(h)

	if c := scene.Cursor(s.cursor.Load()); c != s.shownCursor {
		s.shownCursor = c
		if c == scene.CursorGrab {
			ebiten.SetCursorShape(ebiten.CursorShapePointer)
		} else {
			ebiten.SetCursorShape(ebiten.CursorShapeDefault)
		}
	}
	return nil
}

func (s *surface) handleInput(h client.Handler) {
	x, y := ebiten.CursorPosition()
	fx, fy := float64(x), float64(y)

	if x != s.lastX || y != s.lastY {
		s.lastX, s.lastY = x, y
		h.Move(fx, fy)
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		h.Press(fx, fy)
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		h.Release(fx, fy)
	}
	if _, dy := ebiten.Wheel(); dy != 0 {
		h.Scroll(dy)
	}
}

type debugDrawer interface {
	DrawDebug(screen *ebiten.Image)
	State() scene.State
	ID() string
	Size() (int, int)
}

func (s *surface) Draw(screen *ebiten.Image) {
	if !s.redraw.Swap(false) && !s.debug {
		return
	}
	h := s.currentHandler()
	if h == nil {
		return
	}

	screen.Clear()
	h.Draw(render.NewScreenCanvas(screen, s.sprites))

	if s.debug {
		info := s.monitor.ID
		if d, ok := h.(debugDrawer); ok {
			d.DrawDebug(screen)
			width, height := d.Size()
			info = fmt.Sprintf("%s %dx%d %s", d.ID(), width, height, d.State())
		}
		ebitenutil.DebugPrint(screen, fmt.Sprintf("%s  FPS: %.1f  TPS: %.1f", info, ebiten.ActualFPS(), ebiten.ActualTPS()))
	}
}

func (s *surface) Layout(outsideWidth, outsideHeight int) (int, int) {
	return s.monitor.Width, s.monitor.Height
}
