package guestauth

import (
	"net/http"

	"github.com/harborview/guestgate/internal/domain"
	"github.com/harborview/guestgate/internal/http/response"
	mw "github.com/harborview/guestgate/internal/http/middleware"
	"github.com/harborview/guestgate/pkg/logger"
)

// logout revokes the presented session. Always succeeds from the client's
// point of view; there is nothing useful to report about an unknown token.
func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	prov := provenance(r)

	if tok := mw.SessionToken(r); tok != "" {
		guestID, _ := h.Sessions.ValidateSession(r.Context(), tok)
		if err := h.Sessions.Revoke(r.Context(), tok); err != nil {
			logger.ErrorContext(r.Context(), "failed to revoke session", "error", err)
		} else if guestID != 0 {
			h.Audit.Record(domain.AuditEvent{GuestID: guestID, Action: domain.AuditSessionRevoked, RequestIP: prov.IP, UserAgent: prov.UserAgent})
		}
	}

	h.clearSessionCookie(w)
	h.render(w, r, AuthResult{Status: http.StatusOK, Payload: map[string]string{"message": "Signed out"}})
}

// session is a small introspection endpoint for the frontend to check who
// the current session belongs to.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) {
	s, err := h.Sessions.Session(r.Context(), mw.SessionToken(r))
	if err != nil {
		// RequireGuestSession already vetted the token; losing it between
		// middleware and here means it was just revoked.
		h.render(w, r, AuthResult{Status: http.StatusUnauthorized, Code: response.CodeUnauthorized, Message: "Session no longer valid"})
		return
	}

	h.render(w, r, AuthResult{Status: http.StatusOK, Payload: domain.SessionResponse{
		SessionToken: s.Token,
		GuestID:      s.GuestID,
		ExpiresAt:    s.ExpiresAt,
	}})
}
