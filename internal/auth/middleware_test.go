package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/whistle-service/internal/domain"
	apperrors "github.com/spec-kit/whistle-service/pkg/util"
)

type stubSessions struct {
	sessions map[string]*domain.Session
}

func (s *stubSessions) Put(_ context.Context, session *domain.Session) error {
	s.sessions[session.ID] = session
	return nil
}

func (s *stubSessions) Get(_ context.Context, id string) (*domain.Session, error) {
	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (s *stubSessions) Delete(_ context.Context, id string) error {
	delete(s.sessions, id)
	return nil
}

func newGateApp(t *testing.T) (*fiber.App, *CookieManager, *stubSessions) {
	t.Helper()
	cookies := NewCookieManager("test-secret", "ws_session", time.Hour)
	sessions := &stubSessions{sessions: make(map[string]*domain.Session)}
	middleware := NewSessionMiddleware(cookies, sessions)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		err := c.Next()
		if err == nil {
			return nil
		}
		domainErr := apperrors.ToDomainError(err)
		return c.Status(domainErr.HTTPStatus).JSON(fiber.Map{"code": domainErr.Code})
	})
	protected := app.Group("", middleware.Handle)
	protected.Get("/reports/X", func(c *fiber.Ctx) error { return c.SendString("ok") })
	review := protected.Group("/review", RequireReviewer())
	review.Get("/reports", func(c *fiber.Ctx) error { return c.SendString("dashboard") })
	return app, cookies, sessions
}

func request(t *testing.T, app *fiber.App, path, cookieName, cookieValue string) int {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	if cookieValue != "" {
		req.AddCookie(&http.Cookie{Name: cookieName, Value: cookieValue})
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func seed(t *testing.T, cookies *CookieManager, sessions *stubSessions, session *domain.Session) string {
	t.Helper()
	require.NoError(t, sessions.Put(context.Background(), session))
	value, err := cookies.Issue(session.ID)
	require.NoError(t, err)
	return value
}

func TestMissingSessionIsUnauthenticated(t *testing.T) {
	app, _, _ := newGateApp(t)

	assert.Equal(t, 401, request(t, app, "/reports/X", "", ""))
	assert.Equal(t, 401, request(t, app, "/review/reports", "", ""))
}

func TestTamperedCookieIsUnauthenticated(t *testing.T) {
	app, _, _ := newGateApp(t)

	assert.Equal(t, 401, request(t, app, "/reports/X", "ws_session", "forged-value"))
}

func TestUnknownSessionIsUnauthenticated(t *testing.T) {
	app, cookies, _ := newGateApp(t)

	value, err := cookies.Issue("no-such-session")
	require.NoError(t, err)
	assert.Equal(t, 401, request(t, app, "/reports/X", "ws_session", value))
}

func TestReporterSessionReachesOnlyOrdinaryRoutes(t *testing.T) {
	app, cookies, sessions := newGateApp(t)
	value := seed(t, cookies, sessions, &domain.Session{ID: "s1", Role: domain.RoleReporter})

	assert.Equal(t, 200, request(t, app, "/reports/X", "ws_session", value))
	assert.Equal(t, 403, request(t, app, "/review/reports", "ws_session", value))
}

func TestPrivilegedSessionNeedsStepUp(t *testing.T) {
	app, cookies, sessions := newGateApp(t)
	pending := seed(t, cookies, sessions, &domain.Session{
		ID: "s2", Role: domain.RoleReviewer, PendingStepUp: true,
	})
	verified := seed(t, cookies, sessions, &domain.Session{
		ID: "s3", Role: domain.RoleReviewer, StepUpVerified: true,
	})

	assert.Equal(t, 403, request(t, app, "/review/reports", "ws_session", pending))
	assert.Equal(t, 200, request(t, app, "/review/reports", "ws_session", verified))
}
