package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/whistle-service/internal/api/dto"
	"github.com/spec-kit/whistle-service/internal/auth"
	"github.com/spec-kit/whistle-service/internal/service"
	apperrors "github.com/spec-kit/whistle-service/pkg/util"
)

// AuthHandler exposes the two authorization gates over HTTP.
type AuthHandler struct {
	access  *service.AccessService
	cookies *auth.CookieManager
}

// NewAuthHandler constructs handler.
func NewAuthHandler(accessService *service.AccessService, cookies *auth.CookieManager) *AuthHandler {
	return &AuthHandler{access: accessService, cookies: cookies}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" {
		return apperrors.NewValidationError("email required", nil)
	}

	session, cookie, err := h.access.Login(c.Context(), req.Email)
	if err != nil {
		return err
	}
	h.setSessionCookie(c, cookie)
	return c.JSON(fiber.Map{"data": dto.LoginResponse{
		Role:          session.Role,
		StepUpPending: session.PendingStepUp,
	}})
}

// VerifyPIN handles POST /auth/pin, the step-up challenge.
func (h *AuthHandler) VerifyPIN(c *fiber.Ctx) error {
	session, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("login required")
	}
	var req dto.VerifyPINRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.access.VerifyPIN(c.Context(), session, req.PIN); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.LoginResponse{
		Role:          session.Role,
		StepUpPending: false,
	}})
}

// Logout handles POST /auth/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	session, _ := auth.SessionFromContext(c)
	if err := h.access.Logout(c.Context(), session); err != nil {
		return apperrors.MapError(err)
	}
	c.Cookie(&fiber.Cookie{
		Name:     h.cookies.CookieName(),
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.SendStatus(http.StatusNoContent)
}

func (h *AuthHandler) setSessionCookie(c *fiber.Ctx, value string) {
	c.Cookie(&fiber.Cookie{
		Name:     h.cookies.CookieName(),
		Value:    value,
		Expires:  time.Now().Add(h.cookies.TTL()),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
