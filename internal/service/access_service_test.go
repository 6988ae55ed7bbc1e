package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/whistle-service/internal/auth"
	"github.com/spec-kit/whistle-service/internal/config"
	"github.com/spec-kit/whistle-service/internal/domain"
	apperrors "github.com/spec-kit/whistle-service/pkg/util"
)

type memSessionStore struct {
	mu       sync.Mutex
	sessions map[string]domain.Session
}

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{sessions: make(map[string]domain.Session)}
}

func (s *memSessionStore) Put(_ context.Context, session *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = *session
	return nil
}

func (s *memSessionStore) Get(_ context.Context, id string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, auth.ErrSessionNotFound
	}
	found := session
	return &found, nil
}

func (s *memSessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

func newTestAccessService(pin string) (*AccessService, *memSessionStore) {
	sessions := newMemSessionStore()
	cookies := auth.NewCookieManager("test-secret", "ws_session", time.Hour)
	svc := NewAccessService(config.AccessConfig{
		AllowList:      []string{"employee@example.com"},
		Reviewers:      []string{"reviewer@example.com"},
		Administrators: []string{"admin@example.com"},
		StepUpPIN:      pin,
	}, AccessDependencies{Sessions: sessions, Cookies: cookies})
	return svc, sessions
}

func TestAuthorizeDerivesRoleFromSetMembership(t *testing.T) {
	svc, _ := newTestAccessService("1234")

	cases := map[string]domain.Role{
		"employee@example.com": domain.RoleReporter,
		"reviewer@example.com": domain.RoleReviewer,
		"admin@example.com":    domain.RoleAdministrator,
	}
	for email, role := range cases {
		identity, err := svc.Authorize(email)
		require.NoError(t, err, email)
		assert.Equal(t, role, identity.Role)
	}
}

func TestAuthorizeNormalizesEmail(t *testing.T) {
	svc, _ := newTestAccessService("1234")

	identity, err := svc.Authorize("  Reviewer@Example.COM  ")
	require.NoError(t, err)
	assert.Equal(t, "reviewer@example.com", identity.Email)
	assert.Equal(t, domain.RoleReviewer, identity.Role)
}

func TestAuthorizeFailsClosed(t *testing.T) {
	svc, _ := newTestAccessService("1234")

	for _, email := range []string{"", "   ", "stranger@example.com"} {
		_, err := svc.Authorize(email)
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, "UNAUTHORIZED"))
	}
}

func TestLoginMarksPrivilegedSessionsPending(t *testing.T) {
	svc, _ := newTestAccessService("1234")
	ctx := context.Background()

	session, cookie, err := svc.Login(ctx, "reviewer@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, cookie)
	assert.True(t, session.PendingStepUp)
	assert.False(t, session.StepUpVerified)
	assert.False(t, session.Authorized())

	reporter, _, err := svc.Login(ctx, "employee@example.com")
	require.NoError(t, err)
	assert.False(t, reporter.PendingStepUp)
	assert.False(t, reporter.Authorized())
}

func TestVerifyPINUnlocksPrivilegedSession(t *testing.T) {
	svc, sessions := newTestAccessService("1234")
	ctx := context.Background()

	session, _, err := svc.Login(ctx, "reviewer@example.com")
	require.NoError(t, err)

	err = svc.VerifyPIN(ctx, session, "9999")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, "UNAUTHORIZED"))
	assert.False(t, session.StepUpVerified)

	require.NoError(t, svc.VerifyPIN(ctx, session, "1234"))
	assert.True(t, session.StepUpVerified)
	assert.True(t, session.Authorized())

	stored, err := sessions.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.True(t, stored.StepUpVerified)
}

func TestVerifyPINWithBcryptSecret(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("1234"), bcrypt.MinCost)
	require.NoError(t, err)
	svc, _ := newTestAccessService(string(hash))
	ctx := context.Background()

	session, _, err := svc.Login(ctx, "admin@example.com")
	require.NoError(t, err)

	err = svc.VerifyPIN(ctx, session, "wrong")
	require.Error(t, err)
	require.NoError(t, svc.VerifyPIN(ctx, session, "1234"))
	assert.True(t, session.StepUpVerified)
}

func TestVerifyPINRejectedForOrdinaryRole(t *testing.T) {
	svc, _ := newTestAccessService("1234")
	ctx := context.Background()

	session, _, err := svc.Login(ctx, "employee@example.com")
	require.NoError(t, err)

	err = svc.VerifyPIN(ctx, session, "1234")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, "FORBIDDEN"))
}

func TestVerifyPINWithoutSession(t *testing.T) {
	svc, _ := newTestAccessService("1234")

	err := svc.VerifyPIN(context.Background(), nil, "1234")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, "UNAUTHORIZED"))
}

func TestEmptyConfiguredPINNeverVerifies(t *testing.T) {
	svc, _ := newTestAccessService("")
	ctx := context.Background()

	session, _, err := svc.Login(ctx, "reviewer@example.com")
	require.NoError(t, err)

	err = svc.VerifyPIN(ctx, session, "")
	require.Error(t, err)
}

func TestLogoutClearsSession(t *testing.T) {
	svc, sessions := newTestAccessService("1234")
	ctx := context.Background()

	session, _, err := svc.Login(ctx, "reviewer@example.com")
	require.NoError(t, err)
	require.NoError(t, svc.VerifyPIN(ctx, session, "1234"))

	require.NoError(t, svc.Logout(ctx, session))
	_, err = sessions.Get(ctx, session.ID)
	assert.ErrorIs(t, err, auth.ErrSessionNotFound)
}

func TestReloginResetsStepUpFlags(t *testing.T) {
	svc, sessions := newTestAccessService("1234")
	ctx := context.Background()

	first, _, err := svc.Login(ctx, "reviewer@example.com")
	require.NoError(t, err)
	require.NoError(t, svc.VerifyPIN(ctx, first, "1234"))

	second, _, err := svc.Login(ctx, "reviewer@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.True(t, second.PendingStepUp)
	assert.False(t, second.StepUpVerified)

	stored, err := sessions.Get(ctx, second.ID)
	require.NoError(t, err)
	assert.False(t, stored.StepUpVerified)
}

func TestReviewerAddressesCoverBothPrivilegedSets(t *testing.T) {
	svc, _ := newTestAccessService("1234")

	addrs := svc.ReviewerAddresses()
	assert.ElementsMatch(t, []string{"reviewer@example.com", "admin@example.com"}, addrs)
}
