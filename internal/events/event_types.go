package events

import (
	"time"

	"github.com/spec-kit/whistle-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventReportCreated       EventType = "report_created"
	EventReportStatusChanged EventType = "report_status_changed"
	EventMessageAdded        EventType = "message_added"
)

// Event represents a domain event emitted by services. Events never carry an
// actor: the submitting side is anonymous and the reviewing side is a role,
// not an identity.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Protocol  string      `json:"protocol"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// ReportCreatedPayload payload.
type ReportCreatedPayload struct {
	Body string `json:"body"`
}

// ReportStatusChangedPayload payload.
type ReportStatusChangedPayload struct {
	OldStatus domain.ReportStatus `json:"old_status"`
	NewStatus domain.ReportStatus `json:"new_status"`
}

// MessageAddedPayload payload.
type MessageAddedPayload struct {
	MessageID     string            `json:"message_id"`
	AuthorRole    domain.AuthorRole `json:"author_role"`
	HasAttachment bool              `json:"has_attachment"`
}
