package dto

import (
	"time"

	"github.com/spec-kit/whistle-service/internal/domain"
)

// SubmitReportResponse returns the tracking protocol, the only credential a
// reporter ever receives.
type SubmitReportResponse struct {
	Protocol string              `json:"protocol"`
	Status   domain.ReportStatus `json:"status"`
}

// ReportSummary is the dashboard row shape.
type ReportSummary struct {
	Protocol    string              `json:"protocol"`
	Status      domain.ReportStatus `json:"status"`
	BodyPreview string              `json:"body_preview"`
	UnreadCount int                 `json:"unread_count"`
	CreatedAt   time.Time           `json:"created_at"`
}

// ReportDetailResponse is the thread view, shared by both sides. Note is
// only populated for reviewers.
type ReportDetailResponse struct {
	Protocol  string                `json:"protocol"`
	Status    domain.ReportStatus   `json:"status"`
	Body      string                `json:"body"`
	Note      string                `json:"note,omitempty"`
	CreatedAt time.Time             `json:"created_at"`
	Messages  []ChatMessageResponse `json:"messages"`
}

// ChatMessageResponse represents one thread turn.
type ChatMessageResponse struct {
	ID         string              `json:"id"`
	AuthorRole domain.AuthorRole   `json:"author_role"`
	Body       string              `json:"body"`
	Attachment *AttachmentResponse `json:"attachment,omitempty"`
	CreatedAt  time.Time           `json:"created_at"`
}

// AttachmentResponse carries the retrieval handle.
type AttachmentResponse struct {
	Handle    string `json:"handle"`
	Extension string `json:"extension"`
	URL       string `json:"url"`
}

// AudioMessageRequest posts a recorded clip as a base64 data URI.
type AudioMessageRequest struct {
	Audio string `json:"audio"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status domain.ReportStatus `json:"status"`
}

// UpdateNoteRequest payload.
type UpdateNoteRequest struct {
	Note string `json:"note"`
}
