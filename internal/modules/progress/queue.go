package progress

import (
	"context"
	"sync"
	"time"

	"github.com/iapss/iapss-backend/internal/observability"
	"github.com/iapss/iapss-backend/internal/platform/ctxutil"
	"github.com/iapss/iapss-backend/internal/platform/logger"
)

const (
	DefaultQueueWorkers = 2
	DefaultQueueSize    = 256
	DefaultJobTimeout   = 15 * time.Second
)

type QueueConfig struct {
	Workers    int
	Size       int
	JobTimeout time.Duration
}

type job struct {
	ctx context.Context
	in  RecordInput
}

// Queue runs recording off the request path. Enqueue never blocks; a full queue
// drops the job with a warning. Failures are only logged.
type Queue struct {
	sink Sink
	cfg  QueueConfig
	log  *logger.Logger

	jobs chan job
	errs chan error

	mu      sync.RWMutex
	stopped bool
	started bool

	workers sync.WaitGroup
	drained chan struct{}
}

func NewQueue(sink Sink, cfg QueueConfig, baseLog *logger.Logger) *Queue {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultQueueWorkers
	}
	if cfg.Size <= 0 {
		cfg.Size = DefaultQueueSize
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = DefaultJobTimeout
	}
	return &Queue{
		sink:    sink,
		cfg:     cfg,
		log:     baseLog.With("component", "RecorderQueue"),
		jobs:    make(chan job, cfg.Size),
		errs:    make(chan error, cfg.Size),
		drained: make(chan struct{}),
	}
}

func (q *Queue) Start() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started || q.stopped {
		return
	}
	q.started = true

	go q.logErrors()
	for i := 0; i < q.cfg.Workers; i++ {
		q.workers.Add(1)
		go q.work(i)
	}
	q.log.Info("Recorder queue started", "workers", q.cfg.Workers, "size", q.cfg.Size)
}

// Enqueue hands in to a worker. The job keeps ctx's values but not its cancellation.
// It reports false when the queue is full or stopped.
func (q *Queue) Enqueue(ctx context.Context, in RecordInput) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.stopped {
		q.log.Warn("Recorder queue stopped, dropping job", "request_id", ctxutil.RequestID(ctx))
		observe(func(m *observability.Metrics) { m.ObserveRecorderJob("dropped") })
		return false
	}

	select {
	case q.jobs <- job{ctx: ctxutil.Detached(ctx), in: in}:
		observe(func(m *observability.Metrics) { m.SetRecorderQueueDepth(len(q.jobs)) })
		return true
	default:
		q.log.Warn("Recorder queue full, dropping job", "request_id", ctxutil.RequestID(ctx), "size", q.cfg.Size)
		observe(func(m *observability.Metrics) { m.ObserveRecorderJob("dropped") })
		return false
	}
}

// Stop refuses new jobs and waits for queued ones to finish, or for ctx to end.
func (q *Queue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()
		return nil
	}
	q.stopped = true
	started := q.started
	close(q.jobs)
	q.mu.Unlock()

	if !started {
		close(q.errs)
		close(q.drained)
		return nil
	}

	done := make(chan struct{})
	go func() {
		q.workers.Wait()
		close(q.errs)
		<-q.drained
		close(done)
	}()

	select {
	case <-done:
		q.log.Info("Recorder queue drained")
		return nil
	case <-ctx.Done():
		q.log.Warn("Recorder queue stop timed out", "pending", len(q.jobs))
		return ctx.Err()
	}
}

func (q *Queue) work(id int) {
	defer q.workers.Done()
	for j := range q.jobs {
		observe(func(m *observability.Metrics) { m.SetRecorderQueueDepth(len(q.jobs)) })
		err := q.run(j)
		if err != nil {
			observe(func(m *observability.Metrics) { m.ObserveRecorderJob("failed") })
			q.errs <- err
			continue
		}
		observe(func(m *observability.Metrics) { m.ObserveRecorderJob("ok") })
		q.log.Debug("Recorded analysis", "worker", id, "owner", j.in.Owner.String(), "kind", string(j.in.Request.Kind))
	}
}

func (q *Queue) run(j job) (err error) {
	ctx, cancel := context.WithTimeout(j.ctx, q.cfg.JobTimeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			err = &RecordingError{Step: "panic", Err: panicError{value: r}}
		}
	}()
	return q.sink.Record(ctx, j.in)
}

func (q *Queue) logErrors() {
	defer close(q.drained)
	for err := range q.errs {
		q.log.Error("Recording failed", "error", err)
	}
}

func observe(fn func(m *observability.Metrics)) {
	if metrics := observability.Current(); metrics != nil {
		fn(metrics)
	}
}
