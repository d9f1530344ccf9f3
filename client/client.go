package client

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/desktop-thingies/obj"
	"github.com/milk9111/desktop-thingies/scene"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultFramerate      = 60
	DefaultWallFriction   = 0.5
	DefaultWallElasticity = 0.5
)

// Config is everything the client needs to build its scenes. Gravity is in
// world units/s², offsets in pixels.
type Config struct {
	Objects        []obj.Descriptor
	Display        string // empty means every connected display
	Framerate      int
	Gravity        cp.Vector
	WallFriction   float64
	WallElasticity float64
	Offsets        scene.Offsets
	Substeps       int
}

func (c Config) withDefaults() Config {
	if c.Framerate <= 0 {
		c.Framerate = DefaultFramerate
	}
	if c.Substeps <= 0 {
		c.Substeps = 1
	}
	c.Objects = slices.Clone(c.Objects)
	return c
}

// Step is the nominal simulation step in seconds.
func (c Config) Step() float64 {
	if c.Framerate <= 0 {
		return 1.0 / DefaultFramerate
	}
	return 1 / float64(c.Framerate)
}

func (c Config) objectsFor(id string) []obj.Descriptor {
	var out []obj.Descriptor
	for _, d := range c.Objects {
		if d.Targets(id) {
			out = append(out, d)
		}
	}
	return out
}

// Target is a monitor that will get a surface, with the descriptors placed
// on it.
type Target struct {
	Monitor Monitor
	Objects []obj.Descriptor
}

// Plan picks the monitors that get a surface. A configured display must be
// connected; monitors no descriptor targets are skipped.
func Plan(cfg Config, monitors []Monitor) ([]Target, error) {
	if len(monitors) == 0 {
		return nil, ErrNoMonitors
	}
	if cfg.Display != "" {
		i := slices.IndexFunc(monitors, func(m Monitor) bool { return m.ID == cfg.Display })
		if i < 0 {
			return nil, fmt.Errorf("%w: %s", ErrUnknownDisplay, cfg.Display)
		}
		monitors = monitors[i : i+1]
	}

	var targets []Target
	for _, m := range monitors {
		descs := cfg.objectsFor(m.ID)
		if len(descs) == 0 {
			continue
		}
		targets = append(targets, Target{Monitor: m, Objects: descs})
	}
	return targets, nil
}

// slot is one monitor's surface and the scene currently bound to it.
type slot struct {
	monitor Monitor
	surface Surface

	mu    sync.Mutex
	scene *scene.Scene
}

func (s *slot) current() *scene.Scene {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scene
}

func (s *slot) bind(sc *scene.Scene) *scene.Scene {
	s.mu.Lock()
	old := s.scene
	s.scene = sc
	s.mu.Unlock()

	sc.SetCursorFunc(s.surface.SetCursor)
	s.surface.SetHandler(sc)
	s.surface.RequestRedraw()
	return old
}

var errSwapped = errors.New("client: scene swapped")

// slotFrames ends a scene's frame loop once a reload has bound a different
// scene to the slot.
type slotFrames struct {
	slot  *slot
	scene *scene.Scene
}

func (f slotFrames) NextFrame(ctx context.Context) error {
	if err := f.slot.surface.NextFrame(ctx); err != nil {
		return err
	}
	if f.slot.current() != f.scene {
		return errSwapped
	}
	return nil
}

// Client owns one scene per target monitor and the frame loops driving them.
type Client struct {
	windowing Windowing
	loader    obj.ImageLoader
	logger    *log.Logger
	rand      *rand.Rand

	mu    sync.Mutex
	cfg   Config
	slots []*slot
}

func New(cfg Config, windowing Windowing, loader obj.ImageLoader, logger *log.Logger) (*Client, error) {
	if windowing == nil {
		return nil, errors.New("client: nil windowing backend")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Client{
		windowing: windowing,
		loader:    loader,
		logger:    logger,
		rand:      rand.New(rand.NewSource(time.Now().UnixNano())),
		cfg:       cfg.withDefaults(),
	}, nil
}

// Config returns the configuration the running scenes were built from.
func (c *Client) Config() Config {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg
}

// Scenes returns the scenes currently bound to surfaces, in monitor order.
func (c *Client) Scenes() []*scene.Scene {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*scene.Scene, 0, len(c.slots))
	for _, sl := range c.slots {
		out = append(out, sl.current())
	}
	return out
}

// Run builds every scene, then creates one surface per scene and drives them
// until ctx is done or a surface fails. No surface is created if any object
// fails to initiate.
func (c *Client) Run(ctx context.Context) error {
	if err := c.open(); err != nil {
		return err
	}
	defer c.close()

	c.mu.Lock()
	slots := slices.Clone(c.slots)
	c.mu.Unlock()
	if len(slots) == 0 {
		c.logger.Warn("no monitor has objects assigned, nothing to show")
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, sl := range slots {
		g.Go(func() error {
			return c.drive(gctx, sl)
		})
	}
	return g.Wait()
}

func (c *Client) open() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.slots) > 0 {
		return errors.New("client: already running")
	}

	monitors, err := c.windowing.Monitors()
	if err != nil {
		return fmt.Errorf("client: list monitors: %w", err)
	}
	targets, err := Plan(c.cfg, monitors)
	if err != nil {
		return err
	}
	for _, m := range monitors {
		if !slices.ContainsFunc(targets, func(t Target) bool { return t.Monitor.ID == m.ID }) {
			c.logger.Info("skipping monitor", "display", m.ID)
		}
	}

	scenes, err := c.build(c.cfg, targets)
	if err != nil {
		return err
	}

	slots := make([]*slot, 0, len(targets))
	for i, t := range targets {
		surface, err := c.windowing.CreateSurface(t.Monitor)
		if err != nil {
			for _, sl := range slots {
				sl.surface.Close()
			}
			for _, sc := range scenes {
				sc.Close()
			}
			return fmt.Errorf("client: create surface for %s: %w", t.Monitor.ID, err)
		}
		sl := &slot{monitor: t.Monitor, surface: surface}
		sl.bind(scenes[i])
		slots = append(slots, sl)
	}
	c.slots = slots
	return nil
}

// build initiates every object for every target before any scene is created,
// so a missing asset fails the whole batch.
func (c *Client) build(cfg Config, targets []Target) ([]*scene.Scene, error) {
	batches := make([][]*obj.Object, 0, len(targets))
	for _, t := range targets {
		objects := make([]*obj.Object, 0, len(t.Objects))
		for _, d := range t.Objects {
			o := obj.New(d)
			if err := o.Initiate(c.loader); err != nil {
				return nil, fmt.Errorf("client: build %s: %w", t.Monitor.ID, err)
			}
			objects = append(objects, o)
		}
		batches = append(batches, objects)
	}

	params := scene.Params{
		Gravity:        cfg.Gravity,
		WallFriction:   cfg.WallFriction,
		WallElasticity: cfg.WallElasticity,
		Offsets:        cfg.Offsets,
		Substeps:       cfg.Substeps,
		Rand:           c.rand,
		Logger:         c.logger,
	}
	scenes := make([]*scene.Scene, 0, len(targets))
	for i, t := range targets {
		sc, err := scene.New(t.Monitor.ID, t.Monitor.Width, t.Monitor.Height, batches[i], params)
		if err != nil {
			for _, s := range scenes {
				s.Close()
			}
			return nil, fmt.Errorf("client: build %s: %w", t.Monitor.ID, err)
		}
		scenes = append(scenes, sc)
	}
	return scenes, nil
}

func (c *Client) drive(ctx context.Context, sl *slot) error {
	for {
		sc := sl.current()
		err := scene.Run(ctx, sc, slotFrames{slot: sl, scene: sc}, sl.surface.RequestRedraw, c.Config().Step())
		if errors.Is(err, errSwapped) {
			continue
		}
		if err != nil && ctx.Err() == nil {
			c.logger.Error("frame loop stopped", "display", sl.monitor.ID, "err", err)
		}
		return err
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, sl := range c.slots {
		sl.current().Close()
		if err := sl.surface.Close(); err != nil {
			c.logger.Warn("close surface", "display", sl.monitor.ID, "err", err)
		}
	}
	c.slots = nil
}

// Reload rebuilds every running scene from cfg on its existing surface. On
// error the running scenes are left untouched. Monitors without a surface
// are not picked up; that needs a restart.
func (c *Client) Reload(cfg Config) error {
	cfg = cfg.withDefaults()

	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.slots) == 0 {
		c.cfg = cfg
		return nil
	}

	targets := make([]Target, 0, len(c.slots))
	for _, sl := range c.slots {
		descs := cfg.objectsFor(sl.monitor.ID)
		if len(descs) == 0 {
			return fmt.Errorf("client: reload %s: %w", sl.monitor.ID, scene.ErrNoObjects)
		}
		targets = append(targets, Target{Monitor: sl.monitor, Objects: descs})
	}
	scenes, err := c.build(cfg, targets)
	if err != nil {
		return err
	}

	c.cfg = cfg
	for i, sl := range c.slots {
		sl.bind(scenes[i]).Close()
	}
	c.logger.Info("config reloaded", "scenes", len(scenes), "objects", len(cfg.Objects))
	return nil
}
