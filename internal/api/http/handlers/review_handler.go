package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/whistle-service/internal/api/dto"
	"github.com/spec-kit/whistle-service/internal/domain"
	"github.com/spec-kit/whistle-service/internal/service"
	"github.com/spec-kit/whistle-service/internal/storage"
	apperrors "github.com/spec-kit/whistle-service/pkg/util"
)

// ReviewHandler serves the privileged side: dashboard, thread review,
// replies, status and note updates. All routes sit behind both gates.
type ReviewHandler struct {
	service *service.ReportService
	store   *storage.FileStore
}

// NewReviewHandler constructs handler.
func NewReviewHandler(reportService *service.ReportService, store *storage.FileStore) *ReviewHandler {
	return &ReviewHandler{service: reportService, store: store}
}

// Dashboard handles GET /review/reports.
func (h *ReviewHandler) Dashboard(c *fiber.Ctx) error {
	reports, counts, err := h.service.Dashboard(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.ReportSummary, 0, len(reports))
	for i := range reports {
		report := &reports[i]
		items = append(items, dto.ReportSummary{
			Protocol:    report.Protocol,
			Status:      report.Status,
			BodyPreview: bodyPreview(report.Body, 120),
			UnreadCount: counts[report.Protocol],
			CreatedAt:   report.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// OpenThread handles GET /review/reports/:protocol. Loading the thread
// acknowledges all unseen reporter messages.
func (h *ReviewHandler) OpenThread(c *fiber.Ctx) error {
	report, msgs, err := h.service.OpenThread(c.Context(), c.Params("protocol"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": reportDetail(report, msgs)})
}

// AddMessage handles POST /review/reports/:protocol/messages.
func (h *ReviewHandler) AddMessage(c *fiber.Ctx) error {
	var attachment *domain.AttachmentRef
	if header, err := c.FormFile("attachment"); err == nil && header != nil {
		attachment, err = saveUpload(h.store, header)
		if err != nil {
			return err
		}
	}
	msg, err := h.service.AppendMessage(c.Context(), c.Params("protocol"),
		domain.AuthorRoleReviewer, c.FormValue("body"), attachment)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": chatMessageResponse(msg)})
}

// UpdateStatus handles PUT /review/reports/:protocol/status.
func (h *ReviewHandler) UpdateStatus(c *fiber.Ctx) error {
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	report, err := h.service.SetStatus(c.Context(), c.Params("protocol"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.SubmitReportResponse{
		Protocol: report.Protocol,
		Status:   report.Status,
	}})
}

// UpdateNote handles PUT /review/reports/:protocol/note.
func (h *ReviewHandler) UpdateNote(c *fiber.Ctx) error {
	var req dto.UpdateNoteRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	report, err := h.service.SetNote(c.Context(), c.Params("protocol"), req.Note)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"protocol": report.Protocol,
		"note":     report.Note,
	}})
}

func bodyPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	if len(body) <= max {
		return body
	}
	if max <= 3 {
		return body[:max]
	}
	return body[:max-3] + "..."
}
