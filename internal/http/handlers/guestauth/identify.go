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

// emailParam reads the email from a JSON body or a form submission.
func emailParam(r *http.Request) (string, bool) {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/x-www-form-urlencoded" {
		if err := r.ParseForm(); err != nil {
			return "", false
		}
		return r.PostFormValue("email"), true
	}

	var in domain.IdentifyRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		return "", false
	}
	return in.Email, true
}

// identify is the email-matching path: presenting a known email is proof of
// identity, so a session is bound immediately.
func (h *Handler) identify(w http.ResponseWriter, r *http.Request) {
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
			h.Audit.Record(domain.AuditEvent{Action: domain.AuditAuthFailed, RequestIP: prov.IP, UserAgent: prov.UserAgent, Detail: "identify: no matching guest"})
			h.render(w, r, AuthResult{Status: http.StatusNotFound, Code: response.CodeNotFound, Message: "We couldn't find an invitation for that email"})
			return
		}
		logger.ErrorContext(r.Context(), "failed to resolve guest", "error", err)
		h.render(w, r, AuthResult{Status: http.StatusInternalServerError, Code: response.CodeUnknownError, Message: "Something went wrong. Please try again."})
		return
	}

	if guest.AuthMethod != domain.AuthEmailMatching {
		h.Audit.Record(domain.AuditEvent{GuestID: guest.ID, Action: domain.AuditAuthFailed, RequestIP: prov.IP, UserAgent: prov.UserAgent, Detail: "identify: guest requires magic link"})
		h.render(w, r, AuthResult{Status: http.StatusForbidden, Code: response.CodeInvalidAuthMethod, Message: "This invitation uses an emailed sign-in link. Request one instead."})
		return
	}

	sess, err := h.Sessions.IssueSession(r.Context(), guest.ID, prov)
	if err != nil {
		logger.ErrorContext(r.Context(), "failed to issue session", "guest_id", guest.ID, "error", err)
		h.render(w, r, AuthResult{Status: http.StatusInternalServerError, Code: response.CodeSessionError, Message: "Could not start a session. Please try again."})
		return
	}

	h.Audit.Record(domain.AuditEvent{GuestID: guest.ID, Action: domain.AuditLoginEmailMatch, RequestIP: prov.IP, UserAgent: prov.UserAgent})
	h.Audit.Record(domain.AuditEvent{GuestID: guest.ID, Action: domain.AuditSessionIssued, RequestIP: prov.IP, UserAgent: prov.UserAgent})

	h.setSessionCookie(w, sess.Token, sess.ExpiresAt)
	h.render(w, r, AuthResult{Status: http.StatusOK, Payload: domain.SessionResponse{
		SessionToken: sess.Token,
		GuestID:      sess.GuestID,
		ExpiresAt:    sess.ExpiresAt,
	}})
}
