package handlers

import (
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/whistle-service/internal/api/dto"
	"github.com/spec-kit/whistle-service/internal/domain"
	"github.com/spec-kit/whistle-service/internal/service"
	"github.com/spec-kit/whistle-service/internal/storage"
	apperrors "github.com/spec-kit/whistle-service/pkg/util"
)

// ReportsHandler serves the reporter side: submit, track, follow-up turns.
type ReportsHandler struct {
	service *service.ReportService
	store   *storage.FileStore
}

// NewReportsHandler constructs handler.
func NewReportsHandler(reportService *service.ReportService, store *storage.FileStore) *ReportsHandler {
	return &ReportsHandler{service: reportService, store: store}
}

// Submit handles POST /reports (multipart: body, accept_terms, attachment).
func (h *ReportsHandler) Submit(c *fiber.Ctx) error {
	accepted, _ := strconv.ParseBool(c.FormValue("accept_terms"))
	input := service.SubmitInput{
		Body:          c.FormValue("body"),
		AcceptedTerms: accepted,
	}

	attachment, err := h.storeUpload(c, "attachment")
	if err != nil {
		return err
	}
	input.Attachment = attachment

	report, err := h.service.Submit(c.Context(), input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.SubmitReportResponse{
		Protocol: report.Protocol,
		Status:   report.Status,
	}})
}

// Track handles GET /reports/:protocol.
func (h *ReportsHandler) Track(c *fiber.Ctx) error {
	report, msgs, err := h.service.Track(c.Context(), c.Params("protocol"))
	if err != nil {
		return err
	}
	// the reporter never sees the internal note
	report.Note = ""
	return c.JSON(fiber.Map{"data": reportDetail(report, msgs)})
}

// AddMessage handles POST /reports/:protocol/messages (multipart text/file).
func (h *ReportsHandler) AddMessage(c *fiber.Ctx) error {
	attachment, err := h.storeUpload(c, "attachment")
	if err != nil {
		return err
	}
	msg, err := h.service.AppendMessage(c.Context(), c.Params("protocol"),
		domain.AuthorRoleReporter, c.FormValue("body"), attachment)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": chatMessageResponse(msg)})
}

// AddAudioMessage handles POST /reports/:protocol/audio with a recorded clip
// as a base64 data URI.
func (h *ReportsHandler) AddAudioMessage(c *fiber.Ctx) error {
	var req dto.AudioMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Audio == "" {
		return apperrors.NewValidationError("audio required", nil)
	}
	handle, err := h.store.SaveAudioDataURI(req.Audio)
	if err != nil {
		return err
	}
	attachment := &domain.AttachmentRef{Handle: handle, Extension: storage.Extension(handle)}
	msg, err := h.service.AppendMessage(c.Context(), c.Params("protocol"),
		domain.AuthorRoleReporter, "", attachment)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": chatMessageResponse(msg)})
}

// storeUpload persists an optional multipart file under an opaque name. A
// missing file field is not an error.
func (h *ReportsHandler) storeUpload(c *fiber.Ctx, field string) (*domain.AttachmentRef, error) {
	header, err := c.FormFile(field)
	if err != nil || header == nil {
		return nil, nil
	}
	return saveUpload(h.store, header)
}

func saveUpload(store *storage.FileStore, header *multipart.FileHeader) (*domain.AttachmentRef, error) {
	src, err := header.Open()
	if err != nil {
		return nil, apperrors.NewValidationError("unreadable upload", nil)
	}
	defer src.Close()

	handle, err := store.Save(src, header.Filename)
	if err != nil {
		return nil, err
	}
	return &domain.AttachmentRef{Handle: handle, Extension: storage.Extension(handle)}, nil
}

func reportDetail(report *domain.Report, messages []domain.ChatMessage) dto.ReportDetailResponse {
	msgs := make([]dto.ChatMessageResponse, 0, len(messages))
	for i := range messages {
		msgs = append(msgs, chatMessageResponse(&messages[i]))
	}
	return dto.ReportDetailResponse{
		Protocol:  report.Protocol,
		Status:    report.Status,
		Body:      report.Body,
		Note:      report.Note,
		CreatedAt: report.CreatedAt,
		Messages:  msgs,
	}
}

func chatMessageResponse(msg *domain.ChatMessage) dto.ChatMessageResponse {
	resp := dto.ChatMessageResponse{
		ID:         msg.ID,
		AuthorRole: msg.AuthorRole,
		Body:       msg.Body,
		CreatedAt:  msg.CreatedAt,
	}
	if msg.Attachment != nil {
		resp.Attachment = &dto.AttachmentResponse{
			Handle:    msg.Attachment.Handle,
			Extension: msg.Attachment.Extension,
			URL:       "/attachments/" + msg.Attachment.Handle,
		}
	}
	return resp
}
