package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/myapi/auth-api/internal/core/domain"
	"github.com/myapi/auth-api/internal/core/ports"
	"github.com/myapi/auth-api/internal/pkg/metrics"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Dispatcher routes audit events to a fixed set of workers using consistent
// hashing on the account email, guaranteeing per-account event ordering.
type Dispatcher struct {
	workers []chan domain.AuthEvent
	service ports.AuditService
	log     zerolog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, service ports.AuditService, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.AuthEvent, numWorkers),
		service: service,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.AuthEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled
// or when Close has drained their channel.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue hands an event to the worker responsible for its email. It never
// blocks: when that worker's buffer is full the event is dropped.
func (d *Dispatcher) Enqueue(event domain.AuthEvent) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		metrics.AuditEventsTotal.WithLabelValues("dropped").Inc()
		return
	}

	idx := d.shardIndex(event.Email)
	// Counted before the send so the worker's Dec never runs ahead of it.
	depth := metrics.AuditQueueDepth.WithLabelValues(strconv.Itoa(idx))
	depth.Inc()
	select {
	case d.workers[idx] <- event:
	default:
		depth.Dec()
		metrics.AuditEventsTotal.WithLabelValues("dropped").Inc()
		d.log.Warn().
			Str("kind", string(event.Kind)).
			Int("worker_id", idx).
			Msg("audit queue full, event dropped")
	}
}

// Close stops accepting events and waits for the workers to drain what is
// already queued.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	for _, ch := range d.workers {
		close(ch)
	}
	d.mu.Unlock()

	d.wg.Wait()
}

// shardIndex maps an email deterministically to a worker index.
func (d *Dispatcher) shardIndex(email string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(email))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.AuthEvent) {
	defer d.wg.Done()
	depth := metrics.AuditQueueDepth.WithLabelValues(strconv.Itoa(id))

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			depth.Dec()
			if err := d.service.Record(ctx, event); err != nil {
				metrics.AuditEventsTotal.WithLabelValues("failed").Inc()
				d.log.Error().Err(err).
					Str("kind", string(event.Kind)).
					Int("worker_id", id).
					Msg("audit event failed")
				continue
			}
			metrics.AuditEventsTotal.WithLabelValues("recorded").Inc()
		}
	}
}
