package domain

import "time"

// ReportStatus enumerates lifecycle states for anonymous reports.
type ReportStatus string

const (
	ReportStatusReceived   ReportStatus = "RECEIVED"
	ReportStatusInProgress ReportStatus = "IN_PROGRESS"
	ReportStatusClosed     ReportStatus = "CLOSED"
)

// ValidStatus reports whether s is one of the known lifecycle states.
func ValidStatus(s ReportStatus) bool {
	switch s {
	case ReportStatusReceived, ReportStatusInProgress, ReportStatusClosed:
		return true
	}
	return false
}

// Report is the aggregate for an anonymous submission. The protocol is the
// only credential a reporter ever holds; no identity is bound to a report.
type Report struct {
	ID        string
	Protocol  string
	Body      string
	Status    ReportStatus
	Note      string
	CreatedAt time.Time
}

// Closed reports reject new reporter-authored messages.
func (r *Report) Closed() bool {
	return r.Status == ReportStatusClosed
}
