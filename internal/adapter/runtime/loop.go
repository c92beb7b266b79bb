package runtime

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

var ErrStopped = errors.New("simulation loop stopped")

// Config controls the wall-clock driver. Speed scales virtual time per
// step: 1.0 is real time, 0 pauses.
type Config struct {
	Step   time.Duration
	Speed  float64
	Logger *slog.Logger
}

func DefaultConfig() Config {
	return Config{
		Step:   100 * time.Millisecond,
		Speed:  1.0,
		Logger: slog.Default(),
	}
}

// Loop drives a Scheduler from wall-clock time and serializes every other
// access to the simulation through Exec.
type Loop struct {
	cfg   Config
	sched *Scheduler

	mu      sync.Mutex
	steps   uint64
	stopped bool
	stop    chan struct{}
	once    sync.Once
}

func NewLoop(sched *Scheduler, cfg Config) *Loop {
	def := DefaultConfig()
	if cfg.Step <= 0 {
		cfg.Step = def.Step
	}
	if cfg.Speed < 0 {
		cfg.Speed = 0
	}
	if cfg.Logger == nil {
		cfg.Logger = def.Logger
	}
	if sched == nil {
		sched = NewScheduler()
	}
	return &Loop{cfg: cfg, sched: sched, stop: make(chan struct{})}
}

func (l *Loop) Scheduler() *Scheduler { return l.sched }

// Run blocks until ctx is done or Stop is called.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.cfg.Step)
	defer ticker.Stop()
	l.cfg.Logger.Info("simulation loop started", "step", l.cfg.Step, "speed", l.cfg.Speed)

	for {
		select {
		case <-ctx.Done():
			l.halt()
			l.cfg.Logger.Info("simulation loop stopped", "steps", l.Steps(), "reason", ctx.Err())
			return ctx.Err()
		case <-l.stop:
			l.cfg.Logger.Info("simulation loop stopped", "steps", l.Steps())
			return nil
		case <-ticker.C:
			l.Step()
		}
	}
}

// Step advances virtual time by one scaled step.
func (l *Loop) Step() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopped || l.cfg.Speed == 0 {
		return 0
	}
	l.steps++
	fired := l.sched.Advance(time.Duration(float64(l.cfg.Step) * l.cfg.Speed))
	if fired > 0 {
		l.cfg.Logger.Debug("simulation step", "step", l.steps, "fired", fired, "pending", l.sched.Pending())
	}
	return fired
}

func (l *Loop) Stop() {
	l.halt()
	l.once.Do(func() { close(l.stop) })
}

// Exec runs fn with exclusive access to the simulation.
func (l *Loop) Exec(ctx context.Context, fn func()) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopped {
		return ErrStopped
	}
	fn()
	return nil
}

func (l *Loop) Steps() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.steps
}

func (l *Loop) halt() {
	l.mu.Lock()
	l.stopped = true
	l.mu.Unlock()
}
