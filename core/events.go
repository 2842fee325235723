package core

import "context"

// Routing keys of the domain events published by the app.
const (
	EventAttendanceFinalized = "attendance.finalized"
	EventCertificateIssued   = "certificate.issued"
)

// EventPublisher is any service that can broadcast domain events.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload interface{}) error
	Close() error
}
