package guestauth

import (
	"encoding/json"
	"mime"
	"net/http"
	"net/url"
	"time"

	mw "github.com/harborview/guestgate/internal/http/middleware"
	"github.com/harborview/guestgate/internal/http/response"
)

// AuthResult is the single outcome type every operation produces. Two
// renderers consume it: JSON for API clients, a redirect for browser form
// submissions. The services underneath know nothing about either shape.
type AuthResult struct {
	Status  int
	Code    string // empty on success
	Message string
	Payload any // JSON body on success
}

// isFormRequest reports whether the client submitted a browser form and
// should be answered with a redirect instead of JSON.
func isFormRequest(r *http.Request) bool {
	ct, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && ct == "application/x-www-form-urlencoded"
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, res AuthResult) {
	h.renderAs(w, r, res, isFormRequest(r))
}

func (h *Handler) renderAs(w http.ResponseWriter, r *http.Request, res AuthResult, browser bool) {
	if browser {
		q := url.Values{}
		if res.Code == "" {
			q.Set("status", "ok")
		} else {
			q.Set("status", "error")
			q.Set("code", res.Code)
			q.Set("message", res.Message)
		}
		http.Redirect(w, r, h.App.RedirectBase+"?"+q.Encode(), http.StatusSeeOther)
		return
	}

	if res.Code != "" {
		response.WriteError(w, res.Status, res.Message, res.Code)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(res.Status)
	_ = json.NewEncoder(w).Encode(res.Payload)
}

// setSessionCookie binds the session into an HTTP-only, same-site-lax
// cookie scoped to the application root.
func (h *Handler) setSessionCookie(w http.ResponseWriter, token string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     mw.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(time.Until(expiresAt).Seconds()),
		HttpOnly: true,
		Secure:   h.App.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     mw.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.App.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}
