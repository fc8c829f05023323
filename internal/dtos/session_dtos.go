package dtos

import (
	"time"

	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/models"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SessionResponse returns the portal session token. Browser clients also
// receive it as a cookie.
type SessionResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *models.User `json:"user,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type HealthCheckResponse struct {
	Status string `json:"status"`
}
