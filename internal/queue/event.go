// Package queue defines message payloads exchanged over the message broker.
package queue

// PickupRequestedEvent is published when a producer schedules a pickup.
// It carries enough information for downstream consumers (collector
// notifications, analytics) without querying the primary database.
type PickupRequestedEvent struct {
	RequestID     string   `json:"request_id"`
	ProducerID    string   `json:"producer_id"`
	AddressID     string   `json:"address_id"`
	City          string   `json:"city"`
	ScheduledTime string   `json:"scheduled_time"`
	MaterialIDs   []string `json:"material_ids"`
	RequestedAt   string   `json:"requested_at"`
}
