package notify

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type recordingSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *recordingSink) Deliver(_ context.Context, e Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return nil
}

func (s *recordingSink) kinds() []Kind {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Kind, len(s.events))
	for i, e := range s.events {
		out[i] = e.Kind
	}
	return out
}

func TestDispatcherDeliversInOrder(t *testing.T) {
	sink := &recordingSink{}
	d := NewDispatcher(8, zap.NewNop(), sink)

	d.Publish(Event{Kind: ReservationCreated, ReservationID: "a"})
	d.Publish(Event{Kind: ReservationConfirmed, ReservationID: "a"})
	d.Publish(Event{Kind: ReservationCancelled, ReservationID: "a"})
	d.Close()

	assert.Equal(t, []Kind{ReservationCreated, ReservationConfirmed, ReservationCancelled}, sink.kinds())
}

func TestDispatcherStampsOccurredAt(t *testing.T) {
	sink := &recordingSink{}
	d := NewDispatcher(8, zap.NewNop(), sink)

	d.Publish(Event{Kind: ReservationCreated, ReservationID: "a"})
	d.Close()

	sink.mu.Lock()
	defer sink.mu.Unlock()
	assert.False(t, sink.events[0].OccurredAt.IsZero())
}

type recordingGateway struct {
	mu         sync.Mutex
	authorized []string
	released   []string
}

func (g *recordingGateway) Authorize(_ context.Context, reservationID string, _ int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.authorized = append(g.authorized, reservationID)
	return nil
}

func (g *recordingGateway) Release(_ context.Context, reservationID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.released = append(g.released, reservationID)
	return nil
}

func TestPaymentSinkRoutesEvents(t *testing.T) {
	gw := &recordingGateway{}
	d := NewDispatcher(8, zap.NewNop(), NewPaymentSink(gw))

	d.Publish(Event{Kind: ReservationCreated, ReservationID: "a", TotalCents: 18000})
	d.Publish(Event{Kind: ReservationConfirmed, ReservationID: "a"})
	d.Publish(Event{Kind: ReservationCancelled, ReservationID: "a"})
	d.Close()

	gw.mu.Lock()
	defer gw.mu.Unlock()
	assert.Equal(t, []string{"a"}, gw.authorized)
	assert.Equal(t, []string{"a"}, gw.released)
}

func TestPublishNeverBlocksWhenFull(t *testing.T) {
	// No sinks and no consumer headroom: the buffer fills and further
	// publishes must drop instead of blocking the caller.
	d := NewDispatcher(1, zap.NewNop())
	for i := 0; i < 100; i++ {
		d.Publish(Event{Kind: ReservationCreated})
	}
	d.Close()
}
