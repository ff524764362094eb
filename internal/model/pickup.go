package model

import "time"

// Pickup request statuses.  A request starts as PENDENTE and moves
// forward through ACEITA, COLETADA and ENTREGUE as a collector accepts,
// collects and delivers it.  CANCELADA is reachable only before
// collection.  The set mirrors the CHECK constraint on
// pickup_requests.status.
const (
	StatusPending   = "PENDENTE"
	StatusAccepted  = "ACEITA"
	StatusCollected = "COLETADA"
	StatusDelivered = "ENTREGUE"
	StatusCancelled = "CANCELADA"
)

// AllowedTransition reports whether a pickup request may move from one
// status to another.  Terminal statuses (ENTREGUE, CANCELADA) have no
// outgoing transitions.
func AllowedTransition(from, to string) bool {
	switch from {
	case StatusPending:
		return to == StatusAccepted || to == StatusCancelled
	case StatusAccepted:
		return to == StatusCollected || to == StatusCancelled
	case StatusCollected:
		return to == StatusDelivered
	}
	return false
}

// PickupRequest is a producer's scheduled pickup of recyclable
// materials at one of their addresses.
type PickupRequest struct {
	ID            string              // pickup_requests.id
	ProducerID    string              // pickup_requests.producer_id
	AddressID     string              // pickup_requests.address_id
	ScheduledTime time.Time           // pickup_requests.scheduled_time
	Status        string              // pickup_requests.status
	CreatedAt     time.Time           // pickup_requests.created_at
	Items         []PickupRequestItem // line items, loaded separately
}

// PickupRequestItem is one material line of a pickup request with the
// estimated weight and unit count.
type PickupRequestItem struct {
	ID         string  // pickup_request_items.id
	RequestID  string  // pickup_request_items.request_id
	MaterialID string  // pickup_request_items.material_id
	WeightKg   float64 // pickup_request_items.weight_kg
	Quantity   int     // pickup_request_items.quantity
}
