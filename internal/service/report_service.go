package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/whistle-service/internal/domain"
	"github.com/spec-kit/whistle-service/internal/events"
	"github.com/spec-kit/whistle-service/internal/repository"
	apperrors "github.com/spec-kit/whistle-service/pkg/util"
)

// protocolRetries bounds regeneration attempts when the unique index trips.
const protocolRetries = 5

// ReportService coordinates the report lifecycle and its chat thread.
type ReportService struct {
	reports    repository.ReportRepository
	messages   repository.ChatMessageRepository
	dispatcher events.Dispatcher
}

// ReportDependencies bundles repositories for the report service.
type ReportDependencies struct {
	ReportRepo  repository.ReportRepository
	MessageRepo repository.ChatMessageRepository
	Dispatcher  events.Dispatcher
}

// SubmitInput describes a new anonymous submission.
type SubmitInput struct {
	Body          string
	AcceptedTerms bool
	Attachment    *domain.AttachmentRef
}

// NewReportService constructs the service.
func NewReportService(deps ReportDependencies) *ReportService {
	return &ReportService{
		reports:    deps.ReportRepo,
		messages:   deps.MessageRepo,
		dispatcher: deps.Dispatcher,
	}
}

// Submit creates a report under a fresh protocol and records the submission
// as the opening message of its thread, so resuming the conversation shows
// the original text in place.
func (s *ReportService) Submit(ctx context.Context, input SubmitInput) (*domain.Report, error) {
	body := strings.TrimSpace(input.Body)
	if !input.AcceptedTerms {
		return nil, apperrors.NewValidationError("terms must be accepted", nil)
	}
	if body == "" && input.Attachment == nil {
		return nil, apperrors.NewValidationError("report body required", nil)
	}

	report := &domain.Report{
		Body:   body,
		Status: domain.ReportStatusReceived,
	}
	var err error
	for attempt := 0; attempt < protocolRetries; attempt++ {
		report.Protocol = generateProtocol()
		err = s.reports.Create(ctx, report)
		if err == nil {
			break
		}
		if !errors.Is(err, repository.ErrProtocolTaken) {
			return nil, apperrors.MapError(err)
		}
	}
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	opening := &domain.ChatMessage{
		ReportID:   report.ID,
		AuthorRole: domain.AuthorRoleReporter,
		Body:       body,
		Attachment: input.Attachment,
	}
	if err := s.messages.Create(ctx, opening); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(events.Event{
		Type:     events.EventReportCreated,
		Protocol: report.Protocol,
		Payload:  events.ReportCreatedPayload{Body: report.Body},
	})
	return report, nil
}

// Track resolves a protocol to its report and ordered thread, the reporter
// side of the conversation.
func (s *ReportService) Track(ctx context.Context, protocol string) (*domain.Report, []domain.ChatMessage, error) {
	report, err := s.findByProtocol(ctx, protocol)
	if err != nil {
		return nil, nil, err
	}
	msgs, err := s.messages.ListByReport(ctx, report.ID)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	return report, msgs, nil
}

// AppendMessage adds one turn to a report's thread. Empty turns are rejected
// outright; closed reports are read-only for the reporter but still accept
// reviewer messages, so closure notes can be recorded.
func (s *ReportService) AppendMessage(ctx context.Context, protocol string, role domain.AuthorRole, body string, attachment *domain.AttachmentRef) (*domain.ChatMessage, error) {
	report, err := s.findByProtocol(ctx, protocol)
	if err != nil {
		return nil, err
	}

	msg := &domain.ChatMessage{
		ReportID:       report.ID,
		AuthorRole:     role,
		Body:           strings.TrimSpace(body),
		Attachment:     attachment,
		SeenByReviewer: role == domain.AuthorRoleReviewer,
	}
	if msg.Empty() {
		return nil, apperrors.NewValidationError("message needs text or an attachment", nil)
	}
	if report.Closed() && role == domain.AuthorRoleReporter {
		return nil, apperrors.NewValidationError("report is closed", nil)
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(events.Event{
		Type:     events.EventMessageAdded,
		Protocol: report.Protocol,
		Payload: events.MessageAddedPayload{
			MessageID:     msg.ID,
			AuthorRole:    msg.AuthorRole,
			HasAttachment: msg.Attachment != nil,
		},
	})
	return msg, nil
}

// OpenThread is the reviewer view of a thread. Loading it acknowledges every
// unseen reporter message in the same transaction; viewing is the read
// receipt, there is no separate mark-as-read operation.
func (s *ReportService) OpenThread(ctx context.Context, protocol string) (*domain.Report, []domain.ChatMessage, error) {
	report, err := s.findByProtocol(ctx, protocol)
	if err != nil {
		return nil, nil, err
	}
	msgs, err := s.messages.ListAndMarkSeen(ctx, report.ID)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	return report, msgs, nil
}

// Dashboard returns all reports newest-first with their unread badge counts,
// computed in one aggregate pass.
func (s *ReportService) Dashboard(ctx context.Context) ([]domain.Report, map[string]int, error) {
	reports, err := s.reports.List(ctx)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	counts, err := s.messages.UnreadCountsByProtocol(ctx)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	return reports, counts, nil
}

// UnreadCount returns the unread projection for a single report.
func (s *ReportService) UnreadCount(ctx context.Context, protocol string) (int, error) {
	report, err := s.findByProtocol(ctx, protocol)
	if err != nil {
		return 0, err
	}
	count, err := s.messages.UnreadCount(ctx, report.ID)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	return count, nil
}

// SetStatus moves a report to a new lifecycle state. Any valid state may
// follow any other; unknown values are rejected with the state unchanged.
func (s *ReportService) SetStatus(ctx context.Context, protocol string, status domain.ReportStatus) (*domain.Report, error) {
	if !domain.ValidStatus(status) {
		return nil, apperrors.NewValidationError("unknown status",
			map[string]any{"status": string(status)})
	}
	report, err := s.findByProtocol(ctx, protocol)
	if err != nil {
		return nil, err
	}
	oldStatus := report.Status
	if err := s.reports.SetStatus(ctx, report.ID, status); err != nil {
		return nil, apperrors.MapError(err)
	}
	report.Status = status

	s.publish(events.Event{
		Type:     events.EventReportStatusChanged,
		Protocol: report.Protocol,
		Payload: events.ReportStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: status,
		},
	})
	return report, nil
}

// SetNote updates the reviewer-only annotation.
func (s *ReportService) SetNote(ctx context.Context, protocol, note string) (*domain.Report, error) {
	report, err := s.findByProtocol(ctx, protocol)
	if err != nil {
		return nil, err
	}
	if err := s.reports.SetNote(ctx, report.ID, note); err != nil {
		return nil, apperrors.MapError(err)
	}
	report.Note = note
	return report, nil
}

func (s *ReportService) findByProtocol(ctx context.Context, protocol string) (*domain.Report, error) {
	report, err := s.reports.GetByProtocol(ctx, protocol)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("report", nil)
		}
		return nil, apperrors.MapError(err)
	}
	return report, nil
}

func (s *ReportService) publish(event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(context.Background(), event)
}

// generateProtocol builds the short user-facing code: 8 uppercase hex chars
// from a random UUID. Collisions are possible and handled by the caller's
// retry loop against the unique index.
func generateProtocol() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
