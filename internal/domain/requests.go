package domain

import "time"

type IdentifyRequest struct {
	Email string `json:"email"`
}

type MagicLinkRequest struct {
	Email string `json:"email"`
}

type VerifyRequest struct {
	Token string `json:"token"`
}

type SessionResponse struct {
	SessionToken string    `json:"session_token"`
	GuestID      int64     `json:"guest_id"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type IssuedLink struct {
	Token     string
	Link      string
	ExpiresAt time.Time
}
