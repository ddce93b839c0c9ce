package guestauth

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"

	"github.com/harborview/guestgate/internal/domain"
	"github.com/harborview/guestgate/internal/http/response"
	"github.com/harborview/guestgate/internal/utils"
	"github.com/harborview/guestgate/pkg/logger"
)

// requestLink issues a magic-link token and hands it to the mailer. The
// acknowledgment is deliberately opaque: beyond the resolver's own errors it
// never confirms delivery details.
func (h *Handler) requestLink(w http.ResponseWriter, r *http.Request) {
	raw, ok := emailParam(r)
	if !ok {
		h.render(w, r, AuthResult{Status: http.StatusBadRequest, Code: response.CodeValidationError, Message: "Invalid request body"})
		return
	}

	email := utils.NormalizeEmail(raw)
	if !utils.IsValidEmail(email) {
		h.render(w, r, AuthResult{Status: http.StatusBadRequest, Code: response.CodeValidationError, Message: "Invalid email format"})
		return
	}

	prov := provenance(r)

	guest, err := h.Resolver.Resolve(r.Context(), email)
	if err != nil {
		if errors.Is(err, domain.ErrGuestNotFound) {
			h.Audit.Record(domain.AuditEvent{Action: domain.AuditAuthFailed, RequestIP: prov.IP, UserAgent: prov.UserAgent, Detail: "request-link: no matching guest"})
			h.render(w, r, AuthResult{Status: http.StatusNotFound, Code: response.CodeNotFound, Message: "We couldn't find an invitation for that email"})
			return
		}
		logger.ErrorContext(r.Context(), "failed to resolve guest", "error", err)
		h.render(w, r, AuthResult{Status: http.StatusInternalServerError, Code: response.CodeUnknownError, Message: "Something went wrong. Please try again."})
		return
	}

	link, err := h.Issuer.Issue(r.Context(), guest, prov)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidAuthMethod) {
			h.Audit.Record(domain.AuditEvent{GuestID: guest.ID, Action: domain.AuditAuthFailed, RequestIP: prov.IP, UserAgent: prov.UserAgent, Detail: "request-link: guest uses email matching"})
			h.render(w, r, AuthResult{Status: http.StatusForbidden, Code: response.CodeInvalidAuthMethod, Message: "This invitation signs in by email directly; no link is needed."})
			return
		}
		logger.ErrorContext(r.Context(), "failed to issue magic link", "guest_id", guest.ID, "error", err)
		h.render(w, r, AuthResult{Status: http.StatusInternalServerError, Code: response.CodeUnknownError, Message: "Something went wrong. Please try again."})
		return
	}

	if err := h.Mailer.SendMagicLink(guest.Email, guest.Name, link.Link, link.ExpiresAt); err != nil {
		// The token row exists; the guest can retry and get a fresh link.
		logger.ErrorContext(r.Context(), "failed to send magic link email", "guest_id", guest.ID, "error", err)
	}

	h.Audit.Record(domain.AuditEvent{GuestID: guest.ID, Action: domain.AuditMagicLinkRequest, RequestIP: prov.IP, UserAgent: prov.UserAgent})

	h.render(w, r, AuthResult{Status: http.StatusOK, Payload: map[string]string{
		"message": "If your invitation uses sign-in links, one is on its way.",
	}})
}

// tokenParam reads the token from the query (clicked link), a JSON body, or
// a form submission.
func tokenParam(r *http.Request) string {
	if t := r.URL.Query().Get("token"); t != "" {
		return t
	}
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/x-www-form-urlencoded" {
		if err := r.ParseForm(); err != nil {
			return ""
		}
		return r.PostFormValue("token")
	}
	var in domain.VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		return ""
	}
	return in.Token
}

// verify redeems a magic link. Each failure mode gets its own code so the
// guest knows whether requesting a fresh link will help. Clicked links
// arrive as plain GET navigations and are always answered with a redirect.
func (h *Handler) verify(w http.ResponseWriter, r *http.Request) {
	token := tokenParam(r)
	prov := provenance(r)
	render := func(res AuthResult) {
		h.renderAs(w, r, res, r.Method == http.MethodGet || isFormRequest(r))
	}

	guestID, err := h.Verifier.Verify(r.Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTokenMalformed), errors.Is(err, domain.ErrTokenNotFound):
			h.Audit.Record(domain.AuditEvent{Action: domain.AuditMagicLinkRejected, RequestIP: prov.IP, UserAgent: prov.UserAgent, Detail: "invalid token"})
			render(AuthResult{Status: http.StatusUnauthorized, Code: response.CodeInvalidToken, Message: "That sign-in link isn't valid. Request a new one."})
		case errors.Is(err, domain.ErrTokenExpired):
			h.Audit.Record(domain.AuditEvent{Action: domain.AuditMagicLinkRejected, RequestIP: prov.IP, UserAgent: prov.UserAgent, Detail: "expired token"})
			render(AuthResult{Status: http.StatusUnauthorized, Code: response.CodeTokenExpired, Message: "That sign-in link has expired. Request a new one."})
		case errors.Is(err, domain.ErrTokenUsed):
			h.Audit.Record(domain.AuditEvent{Action: domain.AuditMagicLinkRejected, RequestIP: prov.IP, UserAgent: prov.UserAgent, Detail: "token already used"})
			render(AuthResult{Status: http.StatusUnauthorized, Code: response.CodeTokenUsed, Message: "That sign-in link was already used. Request a new one."})
		default:
			logger.ErrorContext(r.Context(), "failed to verify magic link", "error", err)
			render(AuthResult{Status: http.StatusInternalServerError, Code: response.CodeUnknownError, Message: "Something went wrong. Please try again."})
		}
		return
	}

	sess, err := h.Sessions.IssueSession(r.Context(), guestID, prov)
	if err != nil {
		logger.ErrorContext(r.Context(), "failed to issue session", "guest_id", guestID, "error", err)
		render(AuthResult{Status: http.StatusInternalServerError, Code: response.CodeSessionError, Message: "Could not start a session. Please try again."})
		return
	}

	h.Audit.Record(domain.AuditEvent{GuestID: guestID, Action: domain.AuditMagicLinkVerified, RequestIP: prov.IP, UserAgent: prov.UserAgent})
	h.Audit.Record(domain.AuditEvent{GuestID: guestID, Action: domain.AuditSessionIssued, RequestIP: prov.IP, UserAgent: prov.UserAgent})

	h.setSessionCookie(w, sess.Token, sess.ExpiresAt)
	render(AuthResult{Status: http.StatusOK, Payload: domain.SessionResponse{
		SessionToken: sess.Token,
		GuestID:      sess.GuestID,
		ExpiresAt:    sess.ExpiresAt,
	}})
}
