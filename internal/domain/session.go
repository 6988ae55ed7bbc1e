package domain

import "time"

// Session is the per-browser authenticated state. The two step-up flags are
// the only authorization-relevant fields beyond the role itself.
type Session struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	Role           Role      `json:"role"`
	PendingStepUp  bool      `json:"pending_step_up"`
	StepUpVerified bool      `json:"step_up_verified"`
	CreatedAt      time.Time `json:"created_at"`
}

// Authorized reports whether the session may reach privileged routes: a
// privileged role that has completed the PIN challenge. Fails closed for
// everything else.
func (s *Session) Authorized() bool {
	if s == nil {
		return false
	}
	return s.Role.Privileged() && s.StepUpVerified
}
