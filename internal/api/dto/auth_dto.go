package dto

import "github.com/spec-kit/whistle-service/internal/domain"

// LoginRequest payload for the allow-list gate.
type LoginRequest struct {
	Email string `json:"email"`
}

// LoginResponse tells the front-end whether the step-up challenge is still
// owed before privileged routes open up.
type LoginResponse struct {
	Role          domain.Role `json:"role"`
	StepUpPending bool        `json:"step_up_pending"`
}

// VerifyPINRequest payload for the step-up gate.
type VerifyPINRequest struct {
	PIN string `json:"pin"`
}
