package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	defaultBatchSize     = 100
	defaultFlushInterval = time.Second
	flushTimeout         = 5 * time.Second
)

// Publisher buffers events in memory and flushes them to a Sink from a
// background goroutine. Emit never blocks the caller; a failing store costs
// the batch, not the search.
type Publisher struct {
	sink      Sink
	buffer    *RingBuffer
	logger    *slog.Logger
	batchSize int
	interval  time.Duration
	now       func() time.Time

	flushMu  sync.Mutex
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

type PublisherOption func(*Publisher)

func WithBufferSize(n int) PublisherOption {
	return func(p *Publisher) {
		p.buffer = NewRingBuffer(n)
	}
}

func WithBatchSize(n int) PublisherOption {
	return func(p *Publisher) {
		if n > 0 {
			p.batchSize = n
		}
	}
}

func WithFlushInterval(d time.Duration) PublisherOption {
	return func(p *Publisher) {
		if d > 0 {
			p.interval = d
		}
	}
}

func WithClock(now func() time.Time) PublisherOption {
	return func(p *Publisher) {
		p.now = now
	}
}

// NewPublisher starts the flush loop. Call Close to stop it and drain the
// buffer.
func NewPublisher(sink Sink, logger *slog.Logger, opts ...PublisherOption) *Publisher {
	p := &Publisher{
		sink:      sink,
		buffer:    NewRingBuffer(0),
		logger:    logger,
		batchSize: defaultBatchSize,
		interval:  defaultFlushInterval,
		now:       time.Now,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	go p.run()
	return p
}

// Emit stamps and queues an event.
func (p *Publisher) Emit(_ context.Context, event Event) {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = p.now()
	}
	p.buffer.Enqueue(event)
}

// Flush writes everything currently buffered.
func (p *Publisher) Flush(ctx context.Context) error {
	p.flushMu.Lock()
	defer p.flushMu.Unlock()

	for {
		batch := p.buffer.DequeueBatch(p.batchSize)
		if len(batch) == 0 {
			return nil
		}
		if err := p.sink.Append(ctx, batch...); err != nil {
			return err
		}
	}
}

// Close stops the flush loop after a final flush.
func (p *Publisher) Close() error {
	p.stopOnce.Do(func() { close(p.stop) })
	<-p.done
	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()
	return p.Flush(ctx)
}

func (p *Publisher) run() {
	defer close(p.done)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
			if err := p.Flush(ctx); err != nil {
				p.logger.Warn("failed to flush audit events", "error", err, "dropped_total", p.buffer.Dropped())
			}
			cancel()
		}
	}
}
