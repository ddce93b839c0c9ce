package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/harborview/guestgate/internal/http/response"
	"github.com/harborview/guestgate/internal/service"
	"github.com/harborview/guestgate/pkg/logger"
)

type ctxKey string

const CtxGuestID ctxKey = "guest_id"

// SessionCookie is the cookie the auth handlers set on login.
const SessionCookie = "guest_session"

// SessionToken extracts the session credential from the cookie or, for API
// clients, a bearer header.
func SessionToken(r *http.Request) string {
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	if authz := r.Header.Get("Authorization"); strings.HasPrefix(authz, "Bearer ") {
		return strings.TrimPrefix(authz, "Bearer ")
	}
	return ""
}

// RequireGuestSession guards routes that need an authenticated guest.
func RequireGuestSession(sessions *service.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok := SessionToken(r)
			if tok == "" {
				response.Unauthorized(w, "A guest session is required")
				return
			}

			guestID, err := sessions.ValidateSession(r.Context(), tok)
			if err != nil {
				response.Unauthorized(w, "Invalid or expired session")
				return
			}

			ctx := context.WithValue(r.Context(), CtxGuestID, guestID)
			ctx = context.WithValue(ctx, logger.GuestIDKey, guestID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GuestID returns the authenticated guest id placed by RequireGuestSession,
// or 0 when the request is unauthenticated.
func GuestID(r *http.Request) int64 {
	if v := r.Context().Value(CtxGuestID); v != nil {
		if id, ok := v.(int64); ok {
			return id
		}
	}
	return 0
}
