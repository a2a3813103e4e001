// Package notify decouples notification and payment collaborators from
// reservation transitions. Services publish an event after a successful
// commit; sinks consume asynchronously, and their failures are logged but
// never reach the caller of the transition.
package notify

import "time"

type Kind string

const (
	ReservationCreated     Kind = "reservation.created"
	ReservationConfirmed   Kind = "reservation.confirmed"
	ReservationCancelled   Kind = "reservation.cancelled"
	ReservationCompleted   Kind = "reservation.completed"
	ReservationRescheduled Kind = "reservation.rescheduled"
)

type InventoryKind string

const (
	InventoryProperty InventoryKind = "property"
	InventoryTour     InventoryKind = "tour"
)

// Event describes a committed reservation transition.
type Event struct {
	Kind          Kind
	Inventory     InventoryKind
	ReservationID string
	InventoryID   string
	ActorID       string
	TotalCents    int64
	Reason        string
	OccurredAt    time.Time
}
