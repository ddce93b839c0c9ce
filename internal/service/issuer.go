package service

import (
	"context"
	"fmt"
	"time"

	"github.com/harborview/guestgate/internal/domain"
	"github.com/harborview/guestgate/internal/repo/postgres"
)

// TokenIssuer creates magic-link tokens and renders the link to deliver.
// Delivery itself is the mailer's job. Issuing a new token does not touch
// previously issued ones; several unconsumed links may be outstanding for
// the same guest, each valid until its own expiry or consumption.
type TokenIssuer struct {
	tokens   postgres.TokensRepo
	baseURL  string
	ttl      time.Duration
	now      func() time.Time
	newToken func() (string, error)
}

func NewTokenIssuer(tokens postgres.TokensRepo, baseURL string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{
		tokens:   tokens,
		baseURL:  baseURL,
		ttl:      ttl,
		now:      time.Now,
		newToken: NewToken,
	}
}

// Issue generates a token for the guest and persists it unconsumed. The
// guest must be configured for magic_link; requesting the wrong strategy is
// a reportable error, never a silent fallback.
func (i *TokenIssuer) Issue(ctx context.Context, guest *domain.Guest, prov domain.Provenance) (*domain.IssuedLink, error) {
	if guest.AuthMethod != domain.AuthMagicLink {
		return nil, domain.ErrInvalidAuthMethod
	}

	value, err := i.newToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	now := i.now()
	t := &domain.MagicLinkToken{
		Token:     value,
		GuestID:   guest.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(i.ttl),
		RequestIP: prov.IP,
		UserAgent: prov.UserAgent,
	}
	if err := i.tokens.Create(ctx, t); err != nil {
		// A 256-bit collision is practically impossible; if the store
		// reports one, surface it rather than retry.
		return nil, fmt.Errorf("failed to persist magic link token: %w", err)
	}

	return &domain.IssuedLink{
		Token:     value,
		Link:      fmt.Sprintf("%s/verify?token=%s", i.baseURL, value),
		ExpiresAt: t.ExpiresAt,
	}, nil
}
