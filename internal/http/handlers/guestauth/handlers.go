// Package guestauth exposes the passwordless guest authentication flow:
// identify by email, request a magic link, verify a magic link, and manage
// the resulting session.
package guestauth

import (
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/harborview/guestgate/internal/domain"
	mw "github.com/harborview/guestgate/internal/http/middleware"
	"github.com/harborview/guestgate/internal/platform/mailer"
	"github.com/harborview/guestgate/internal/service"
	"github.com/harborview/guestgate/pkg/config"
)

type Handler struct {
	Resolver *service.CredentialResolver
	Issuer   *service.TokenIssuer
	Verifier *service.TokenVerifier
	Sessions *service.SessionManager
	Mailer   mailer.Service
	Audit    service.AuditSink
	App      config.AppConfig
}

func NewHandler(
	resolver *service.CredentialResolver,
	issuer *service.TokenIssuer,
	verifier *service.TokenVerifier,
	sessions *service.SessionManager,
	mailSvc mailer.Service,
	audit service.AuditSink,
	app config.AppConfig,
) *Handler {
	return &Handler{
		Resolver: resolver,
		Issuer:   issuer,
		Verifier: verifier,
		Sessions: sessions,
		Mailer:   mailSvc,
		Audit:    audit,
		App:      app,
	}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/identify", h.identify)        // {email} -> session (email_matching)
	r.Post("/request-link", h.requestLink) // {email} -> link delivered
	r.Get("/verify", h.verify)             // ?token=... (clicked link)
	r.Post("/verify", h.verify)            // {token}
	r.Post("/logout", h.logout)
	r.With(mw.RequireGuestSession(h.Sessions)).Get("/session", h.session)
	return r
}

// provenance pulls the client address and agent string off the request.
// Audit-only; never part of an authentication decision.
func provenance(r *http.Request) domain.Provenance {
	ip := r.RemoteAddr
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ip = strings.TrimSpace(strings.Split(xff, ",")[0])
	} else if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		ip = host
	}
	return domain.Provenance{IP: ip, UserAgent: r.UserAgent()}
}
