package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/spec-kit/whistle-service/internal/auth"
	"github.com/spec-kit/whistle-service/internal/config"
	"github.com/spec-kit/whistle-service/internal/domain"
	apperrors "github.com/spec-kit/whistle-service/pkg/util"
)

// AccessService implements the two authorization gates: allow-list login and
// the step-up PIN challenge for privileged identities.
type AccessService struct {
	allowList      map[string]struct{}
	reviewers      map[string]struct{}
	administrators map[string]struct{}
	stepUpPIN      string
	sessions       auth.SessionStore
	cookies        *auth.CookieManager
}

// AccessDependencies bundles collaborators for the access service.
type AccessDependencies struct {
	Sessions auth.SessionStore
	Cookies  *auth.CookieManager
}

// NewAccessService builds the service from the immutable configured sets.
func NewAccessService(cfg config.AccessConfig, deps AccessDependencies) *AccessService {
	return &AccessService{
		allowList:      emailSet(cfg.AllowList),
		reviewers:      emailSet(cfg.Reviewers),
		administrators: emailSet(cfg.Administrators),
		stepUpPIN:      cfg.StepUpPIN,
		sessions:       deps.Sessions,
		cookies:        deps.Cookies,
	}
}

// Authorize runs Gate A: allow-list membership with role derivation. It does
// not create a session; Login composes the two.
func (s *AccessService) Authorize(email string) (*domain.Identity, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return nil, apperrors.NewUnauthorized("email not authorized")
	}
	identity := &domain.Identity{Email: normalized}
	switch {
	case contains(s.administrators, normalized):
		identity.Role = domain.RoleAdministrator
	case contains(s.reviewers, normalized):
		identity.Role = domain.RoleReviewer
	case contains(s.allowList, normalized):
		identity.Role = domain.RoleReporter
	default:
		return nil, apperrors.NewUnauthorized("email not authorized")
	}
	return identity, nil
}

// Login runs Gate A and opens a session. Privileged identities start with
// the step-up challenge pending; logging in again resets any previous
// verification.
func (s *AccessService) Login(ctx context.Context, email string) (*domain.Session, string, error) {
	identity, err := s.Authorize(email)
	if err != nil {
		return nil, "", err
	}
	session := &domain.Session{
		ID:            uuid.NewString(),
		Email:         identity.Email,
		Role:          identity.Role,
		PendingStepUp: identity.Role.Privileged(),
	}
	if err := s.sessions.Put(ctx, session); err != nil {
		return nil, "", apperrors.MapError(err)
	}
	cookie, err := s.cookies.Issue(session.ID)
	if err != nil {
		return nil, "", apperrors.MapError(err)
	}
	return session, cookie, nil
}

// VerifyPIN runs Gate B against an authenticated session. Only privileged
// sessions have a challenge to pass; a wrong PIN leaves the session state
// untouched.
func (s *AccessService) VerifyPIN(ctx context.Context, session *domain.Session, pin string) error {
	if session == nil {
		return apperrors.NewUnauthorized("login required")
	}
	if !session.Role.Privileged() {
		return apperrors.NewForbidden("no step-up challenge for this role")
	}
	if !auth.VerifyPIN(s.stepUpPIN, pin) {
		return apperrors.NewUnauthorized("invalid PIN")
	}
	session.PendingStepUp = false
	session.StepUpVerified = true
	if err := s.sessions.Put(ctx, session); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// Logout clears the session, dropping both step-up flags with it.
func (s *AccessService) Logout(ctx context.Context, session *domain.Session) error {
	if session == nil {
		return nil
	}
	return s.sessions.Delete(ctx, session.ID)
}

// ReviewerAddresses returns every privileged address for notification fan-out.
func (s *AccessService) ReviewerAddresses() []string {
	out := make([]string, 0, len(s.reviewers)+len(s.administrators))
	for email := range s.reviewers {
		out = append(out, email)
	}
	for email := range s.administrators {
		if _, dup := s.reviewers[email]; !dup {
			out = append(out, email)
		}
	}
	return out
}

func emailSet(emails []string) map[string]struct{} {
	set := make(map[string]struct{}, len(emails))
	for _, email := range emails {
		normalized := strings.ToLower(strings.TrimSpace(email))
		if normalized != "" {
			set[normalized] = struct{}{}
		}
	}
	return set
}

func contains(set map[string]struct{}, email string) bool {
	_, ok := set[email]
	return ok
}
