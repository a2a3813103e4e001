package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Sink receives committed reservation events. Implementations wrap the
// external notification and payment collaborators.
type Sink interface {
	Deliver(ctx context.Context, e Event) error
}

// Dispatcher fans events out to sinks on a background goroutine. Publish
// never blocks the reservation transition: when the buffer is full the event
// is dropped and logged.
type Dispatcher struct {
	ch    chan Event
	sinks []Sink
	log   *zap.Logger

	closeOnce sync.Once
	wg        sync.WaitGroup
}

func NewDispatcher(buffer int, log *zap.Logger, sinks ...Sink) *Dispatcher {
	if buffer < 1 {
		buffer = 64
	}
	d := &Dispatcher{
		ch:    make(chan Event, buffer),
		sinks: sinks,
		log:   log,
	}

	d.wg.Add(1)
	go d.run()

	return d
}

// Publish enqueues an event for delivery.
func (d *Dispatcher) Publish(e Event) {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}

	select {
	case d.ch <- e:
	default:
		d.log.Warn("notify buffer full, dropping event",
			zap.String("kind", string(e.Kind)),
			zap.String("reservation_id", e.ReservationID))
	}
}

// Close stops the dispatcher after draining queued events.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() {
		close(d.ch)
	})
	d.wg.Wait()
}

func (d *Dispatcher) run() {
	defer d.wg.Done()

	for e := range d.ch {
		// Each delivery gets its own deadline so one slow collaborator
		// cannot stall the queue indefinitely.
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		for _, s := range d.sinks {
			if err := s.Deliver(ctx, e); err != nil {
				d.log.Error("event delivery failed",
					zap.String("kind", string(e.Kind)),
					zap.String("reservation_id", e.ReservationID),
					zap.Error(err))
			}
		}
		cancel()
	}
}
