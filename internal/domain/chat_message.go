package domain

import "time"

// AuthorRole indicates which side of the conversation authored a message.
// Roles are the only author information ever stored.
type AuthorRole string

const (
	AuthorRoleReporter AuthorRole = "REPORTER"
	AuthorRoleReviewer AuthorRole = "REVIEWER"
)

// ChatMessage is one turn in a report's thread. Messages are append-only and
// must carry text, an attachment, or both.
type ChatMessage struct {
	ID             string
	ReportID       string
	AuthorRole     AuthorRole
	Body           string
	Attachment     *AttachmentRef
	SeenByReviewer bool
	CreatedAt      time.Time
}

// AttachmentRef points at a stored blob by its opaque handle.
type AttachmentRef struct {
	Handle    string
	Extension string
}

// Empty reports whether the message carries neither text nor attachment.
func (m *ChatMessage) Empty() bool {
	return m.Body == "" && m.Attachment == nil
}
