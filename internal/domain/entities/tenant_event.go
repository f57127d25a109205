package entities

import (
	"time"
)

// TenantEventType identifies what changed
type TenantEventType string

const (
	EventAppointmentStatusChanged TenantEventType = "appointment.status_changed"
	EventOrderStatusChanged       TenantEventType = "order.status_changed"
	EventStockChanged             TenantEventType = "stock.changed"
)

// TenantEvent is published on a tenant's channel when one of its rows
// changes, so open dashboards can refresh.
type TenantEvent struct {
	ID         string          `json:"id"`
	Type       TenantEventType `json:"type"`
	TenantID   string          `json:"tenant_id"`
	EntityID   string          `json:"entity_id"`
	FromStatus string          `json:"from_status,omitempty"`
	ToStatus   string          `json:"to_status,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}
