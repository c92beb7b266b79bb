package notify

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"outpost/internal/app/ports"
	"outpost/internal/domain/survival"
)

type Sink interface {
	Deliver(ctx context.Context, event survival.DomainEvent) error
}

type SinkFunc func(ctx context.Context, event survival.DomainEvent) error

func (f SinkFunc) Deliver(ctx context.Context, event survival.DomainEvent) error {
	if f == nil {
		return nil
	}
	return f(ctx, event)
}

type NamedSink struct {
	Name string
	Sink Sink
}

// RepoSink appends every event to repo.
func RepoSink(repo ports.EventRepository) Sink {
	return SinkFunc(func(ctx context.Context, event survival.DomainEvent) error {
		return repo.Append(ctx, []survival.DomainEvent{event})
	})
}

type Config struct {
	BufferSize       int
	DropWarnInterval time.Duration
	Logger           *slog.Logger
}

type Stats struct {
	Posted    uint64 `json:"posted"`
	Delivered uint64 `json:"delivered"`
	Dropped   uint64 `json:"dropped"`
	Failed    uint64 `json:"failed"`
}

// Bus fans simulation events out to sinks on its own goroutine. Post never
// blocks; events are dropped when the queue is full.
type Bus struct {
	cfg    Config
	queue  chan survival.DomainEvent
	sinks  []NamedSink
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	closed atomic.Bool

	posted      atomic.Uint64
	delivered   atomic.Uint64
	dropped     atomic.Uint64
	failed      atomic.Uint64
	lastDropLog atomic.Int64
}

func NewBus(cfg Config, sinks ...NamedSink) *Bus {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 512
	}
	if cfg.DropWarnInterval <= 0 {
		cfg.DropWarnInterval = 5 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	b := &Bus{
		cfg:    cfg,
		queue:  make(chan survival.DomainEvent, cfg.BufferSize),
		ctx:    ctx,
		cancel: cancel,
	}
	for _, s := range sinks {
		if s.Sink != nil {
			b.sinks = append(b.sinks, s)
		}
	}
	b.wg.Add(1)
	go b.run()
	return b
}

func (b *Bus) Post(event survival.DomainEvent) {
	if event.Type == "" || b.closed.Load() {
		return
	}
	select {
	case b.queue <- event:
		b.posted.Add(1)
	default:
		b.drop(event)
	}
}

func (b *Bus) Stats() Stats {
	return Stats{
		Posted:    b.posted.Load(),
		Delivered: b.delivered.Load(),
		Dropped:   b.dropped.Load(),
		Failed:    b.failed.Load(),
	}
}

// Close stops accepting events and delivers what is queued.
func (b *Bus) Close(ctx context.Context) error {
	if !b.closed.CompareAndSwap(false, true) {
		return nil
	}
	b.cancel()
	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *Bus) run() {
	defer b.wg.Done()
	for {
		select {
		case <-b.ctx.Done():
			b.drain()
			return
		case event := <-b.queue:
			b.forward(event)
		}
	}
}

func (b *Bus) drain() {
	for {
		select {
		case event := <-b.queue:
			b.forward(event)
		default:
			return
		}
	}
}

func (b *Bus) forward(event survival.DomainEvent) {
	ctx := context.Background()
	for _, s := range b.sinks {
		if err := s.Sink.Deliver(ctx, event); err != nil {
			b.failed.Add(1)
			b.cfg.Logger.Warn("event delivery failed", "sink", s.Name, "type", event.Type, "err", err)
			continue
		}
		b.delivered.Add(1)
	}
}

func (b *Bus) drop(event survival.DomainEvent) {
	b.dropped.Add(1)
	now := time.Now().UnixNano()
	next := b.lastDropLog.Load()
	if next == 0 || now >= next {
		if b.lastDropLog.CompareAndSwap(next, now+b.cfg.DropWarnInterval.Nanoseconds()) {
			b.cfg.Logger.Warn("dropping event", "type", event.Type, "entity", event.Entity)
		}
	}
}

var _ ports.Notifier = (*Bus)(nil)
