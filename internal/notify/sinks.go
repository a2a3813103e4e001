package notify

import (
	"context"

	"go.uber.org/zap"
)

// Notifier is the outbound message collaborator (email/SMS provider).
type Notifier interface {
	Notify(ctx context.Context, e Event) error
}

// PaymentGateway is the escrow collaborator invoked once a reservation has
// been provisionally accepted, and again on cancellation to release funds.
type PaymentGateway interface {
	Authorize(ctx context.Context, reservationID string, amountCents int64) error
	Release(ctx context.Context, reservationID string) error
}

// NotifierSink adapts a Notifier into a Sink.
type NotifierSink struct {
	notifier Notifier
}

func NewNotifierSink(n Notifier) *NotifierSink {
	return &NotifierSink{notifier: n}
}

func (s *NotifierSink) Deliver(ctx context.Context, e Event) error {
	return s.notifier.Notify(ctx, e)
}

// PaymentSink drives the payment gateway from reservation events.
type PaymentSink struct {
	gateway PaymentGateway
}

func NewPaymentSink(g PaymentGateway) *PaymentSink {
	return &PaymentSink{gateway: g}
}

func (s *PaymentSink) Deliver(ctx context.Context, e Event) error {
	switch e.Kind {
	case ReservationCreated:
		return s.gateway.Authorize(ctx, e.ReservationID, e.TotalCents)
	case ReservationCancelled:
		return s.gateway.Release(ctx, e.ReservationID)
	}
	return nil
}

// LogPaymentGateway is the default PaymentGateway: it records the call and
// reports success. Real gateways are wired in at deployment.
type LogPaymentGateway struct {
	log *zap.Logger
}

func NewLogPaymentGateway(log *zap.Logger) *LogPaymentGateway {
	return &LogPaymentGateway{log: log}
}

func (g *LogPaymentGateway) Authorize(_ context.Context, reservationID string, amountCents int64) error {
	g.log.Info("payment authorize",
		zap.String("reservation_id", reservationID),
		zap.Int64("amount_cents", amountCents))
	return nil
}

func (g *LogPaymentGateway) Release(_ context.Context, reservationID string) error {
	g.log.Info("payment release", zap.String("reservation_id", reservationID))
	return nil
}

// LogNotifier is the default Notifier: it records the event and does nothing
// else. Real providers are wired in at deployment.
type LogNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(log *zap.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(_ context.Context, e Event) error {
	n.log.Info("reservation event",
		zap.String("kind", string(e.Kind)),
		zap.String("inventory", string(e.Inventory)),
		zap.String("reservation_id", e.ReservationID))
	return nil
}
