package service

import (
	"context"

	"github.com/harborview/guestgate/internal/domain"
	"github.com/harborview/guestgate/internal/repo/postgres"
)

// TokenVerifier redeems magic-link tokens. A presented token lands in
// exactly one of: valid, not found, expired, already used, malformed.
type TokenVerifier struct {
	tokens postgres.TokensRepo
}

func NewTokenVerifier(tokens postgres.TokensRepo) *TokenVerifier {
	return &TokenVerifier{tokens: tokens}
}

// Verify consumes the token and returns the owning guest id. Malformed
// values are rejected before any storage lookup. Consumption is atomic at
// the store: when N clients race on the same token (double click, link
// preview crawlers), one gets the guest id and the rest get
// domain.ErrTokenUsed.
func (v *TokenVerifier) Verify(ctx context.Context, raw string) (int64, error) {
	if !domain.IsTokenFormat(raw) {
		return 0, domain.ErrTokenMalformed
	}
	return v.tokens.Consume(ctx, raw)
}
