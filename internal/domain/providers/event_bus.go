package providers

import (
	"context"

	"github.com/kllinic/marketplace/internal/domain/entities"
)

// EventBus defines the interface for publishing and subscribing to
// tenant dashboard events
type EventBus interface {
	// Publish publishes an event to all subscribers of a channel
	Publish(ctx context.Context, channel string, event *entities.TenantEvent) error

	// Subscribe subscribes to events on a channel
	Subscribe(ctx context.Context, channel string) (<-chan *entities.TenantEvent, error)

	// Unsubscribe unsubscribes from a channel
	Unsubscribe(ctx context.Context, channel string) error

	// Close closes the event bus and all subscriptions
	Close() error
}

// Channel name prefixes, one stream per owning tenant
const (
	EventChannelClinicPrefix   = "clinic:"
	EventChannelPharmacyPrefix = "pharmacy:"
	EventChannelPatientPrefix  = "patient:"
)

// ClinicChannel returns the event channel for a clinic
func ClinicChannel(clinicID string) string {
	return EventChannelClinicPrefix + clinicID
}

// PharmacyChannel returns the event channel for a pharmacy
func PharmacyChannel(pharmacyID string) string {
	return EventChannelPharmacyPrefix + pharmacyID
}

// PatientChannel returns the event channel for a patient
func PatientChannel(patientID string) string {
	return EventChannelPatientPrefix + patientID
}
