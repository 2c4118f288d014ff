package sim

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/san-kum/choreo/internal/catalog"
	"github.com/san-kum/choreo/internal/dynamo"
	"github.com/san-kum/choreo/internal/integrators"
	"github.com/san-kum/choreo/internal/trail"
)

// Controller owns the three bodies, their trails and the stepping policy.
//
// It has a single writer: Reset and Tick run to completion on the caller's
// goroutine and readers must not overlap with them.
type Controller struct {
	params     Params
	integrator integrators.Integrator
	logger     *slog.Logger
	metrics    []dynamo.Metric
	observers  []dynamo.Observer

	bodies []dynamo.Body
	trails []*trail.Ring[dynamo.Vector3]

	solution      catalog.Solution
	solutionIndex int
	focus         int
	dt            float64
	stepsPerFrame int
	trailCapacity int
	frame         int
	time          float64
	divergences   int
}

type Option func(*Controller)

func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

func WithObserver(o dynamo.Observer) Option {
	return func(c *Controller) { c.observers = append(c.observers, o) }
}

func WithMetric(m dynamo.Metric) Option {
	return func(c *Controller) { c.metrics = append(c.metrics, m) }
}

// New builds a controller with no bodies. Tick is a no-op until the first
// successful Reset.
func New(params Params, integ integrators.Integrator, opts ...Option) (*Controller, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if integ == nil {
		return nil, fmt.Errorf("%w: nil integrator", dynamo.ErrInvalidParams)
	}

	c := &Controller{
		params:        params,
		integrator:    integ,
		logger:        slog.Default(),
		metrics:       make([]dynamo.Metric, 0),
		observers:     make([]dynamo.Observer, 0),
		solutionIndex: -1,
		focus:         -1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Controller) AddMetric(m dynamo.Metric)     { c.metrics = append(c.metrics, m) }
func (c *Controller) AddObserver(o dynamo.Observer) { c.observers = append(c.observers, o) }

// Reset discards all bodies and trails and restarts the given solution from
// its catalog initial condition. focus is -1 for the center of mass or a
// body index. Both indices are checked before any state changes.
func (c *Controller) Reset(solution, focus int) error {
	s, err := catalog.Get(solution)
	if err != nil {
		return err
	}
	if focus < -1 || focus >= dynamo.NumBodies {
		return &dynamo.ArgumentError{Name: "focus", Value: focus, Min: -1, Max: dynamo.NumBodies - 1}
	}

	c.reset(solution, s, focus, dynamo.ResetRequested)
	return nil
}

func (c *Controller) reset(index int, s catalog.Solution, focus int, reason dynamo.ResetReason) {
	c.solution = s
	c.solutionIndex = index
	c.focus = focus

	c.dt = c.params.BaseDt / s.InstabilityFactor
	c.stepsPerFrame = int(math.Round(float64(c.params.BaseSpeed) * s.InstabilityFactor))
	if c.stepsPerFrame < 1 {
		c.stepsPerFrame = 1
	}
	// one trail spans one orbital period
	c.trailCapacity = max(1, int(math.Round(s.Period/(c.dt*float64(c.stepsPerFrame)))))

	initial := s.InitialBodies()
	c.bodies = make([]dynamo.Body, len(initial))
	c.trails = make([]*trail.Ring[dynamo.Vector3], len(initial))
	for i, b := range initial {
		c.bodies[i] = b
		c.trails[i] = trail.NewRing(c.trailCapacity, b.Position)
	}

	c.frame = 0
	c.time = 0

	for _, m := range c.metrics {
		m.Reset()
	}
	for _, o := range c.observers {
		o.OnReset(reason)
	}

	c.logger.Debug("simulation reset",
		"reason", reason.String(),
		"solution", index,
		"name", s.Name,
		"focus", focus,
		"dt", c.dt,
		"steps_per_frame", c.stepsPerFrame,
		"trail_capacity", c.trailCapacity,
	)
}

// Tick advances one display frame: StepsPerFrame integrator steps, then
// recentering on the focus body, then one trail point per body. Every
// CheckInterval frames the stability check runs and a diverged run is
// restarted from its initial condition.
func (c *Controller) Tick() {
	if len(c.bodies) == 0 {
		return
	}

	for i := 0; i < c.stepsPerFrame; i++ {
		c.integrator.Step(c.bodies, c.dt)
	}
	c.time += c.dt * float64(c.stepsPerFrame)

	if c.focus != -1 {
		c.recenter()
	}

	for i := range c.bodies {
		c.trails[i].Push(c.bodies[i].Position)
	}

	c.frame++

	for _, m := range c.metrics {
		m.Observe(c.bodies)
	}
	for _, o := range c.observers {
		o.OnFrame(c.frame, c.time, c.bodies)
	}

	if c.params.CheckInterval > 0 && c.frame%c.params.CheckInterval == 0 {
		if err := c.CheckStability(); err != nil {
			c.divergences++
			c.logger.Warn("simulation diverged, resetting",
				"err", err,
				"solution", c.solutionIndex,
				"name", c.solution.Name,
				"integrator", c.integrator.Name(),
			)
			c.reset(c.solutionIndex, c.solution, c.focus, dynamo.ResetDiverged)
		}
	}
}

// recenter shifts every position so the focus body sits at the origin.
// Velocities are left alone.
func (c *Controller) recenter() {
	adjustment := c.bodies[c.focus].Position
	for i := range c.bodies {
		c.bodies[i].Position = c.bodies[i].Position.Sub(adjustment)
	}
}

// CheckStability reports the first body whose speed or distance from the
// origin exceeds the configured limits, or whose state is no longer finite.
// It does not reset; Tick does that.
func (c *Controller) CheckStability() error {
	for i, b := range c.bodies {
		speed := b.Velocity.Norm()
		dist := b.Position.Norm()
		if !b.IsValid() || speed > c.params.VelocityLimit || dist > c.params.PositionLimit {
			return &dynamo.DivergenceError{Frame: c.frame, Body: i, Speed: speed, Distance: dist}
		}
	}
	return nil
}

func (c *Controller) Solution() int                      { return c.solutionIndex }
func (c *Controller) SolutionInfo() catalog.Solution     { return c.solution }
func (c *Controller) Focus() int                         { return c.focus }
func (c *Controller) TrailCapacity() int                 { return c.trailCapacity }
func (c *Controller) Dt() float64                        { return c.dt }
func (c *Controller) StepsPerFrame() int                 { return c.stepsPerFrame }
func (c *Controller) Frame() int                         { return c.frame }
func (c *Controller) Time() float64                      { return c.time }
func (c *Controller) Divergences() int                   { return c.divergences }
func (c *Controller) Params() Params                     { return c.params }
func (c *Controller) Integrator() integrators.Integrator { return c.integrator }

// Bodies returns a copy of the current body states.
func (c *Controller) Bodies() []dynamo.Body {
	return dynamo.CloneBodies(c.bodies)
}

// Position returns body i's position, or the zero vector when there is no
// such body (before the first Reset or i out of range).
func (c *Controller) Position(i int) dynamo.Vector3 {
	if i < 0 || i >= len(c.bodies) {
		return dynamo.Vector3{}
	}
	return c.bodies[i].Position
}

// Trail appends body i's trail, oldest first, to dst. dst is returned
// unchanged when there is no such trail.
func (c *Controller) Trail(i int, dst []dynamo.Vector3) []dynamo.Vector3 {
	if i < 0 || i >= len(c.trails) {
		return dst
	}
	return c.trails[i].AppendTo(dst)
}

func (c *Controller) Snapshot() Snapshot {
	s := Snapshot{
		Solution:      c.solutionIndex,
		Name:          c.solution.Name,
		Focus:         c.focus,
		Integrator:    c.integrator.Name(),
		Dt:            c.dt,
		StepsPerFrame: c.stepsPerFrame,
		TrailCapacity: c.trailCapacity,
		Frame:         c.frame,
		Time:          c.time,
		Divergences:   c.divergences,
		Bodies:        make([]BodyView, len(c.bodies)),
	}
	for i, b := range c.bodies {
		s.Bodies[i] = BodyView{
			Position: b.Position,
			Velocity: b.Velocity,
			Trail:    c.trails[i].Values(),
		}
	}
	return s
}
