package service

import (
	"context"
	"fmt"

	"github.com/harborview/guestgate/internal/domain"
	"github.com/harborview/guestgate/internal/repo/postgres"
	"github.com/harborview/guestgate/internal/utils"
)

// CredentialResolver decides which authentication strategy governs an
// email. It is the single place that decision is made; callers must consult
// it before issuing tokens or sessions.
type CredentialResolver struct {
	guests postgres.GuestsRepo
}

func NewCredentialResolver(guests postgres.GuestsRepo) *CredentialResolver {
	return &CredentialResolver{guests: guests}
}

// Resolve normalizes the email and looks up the matching guest. Pure read.
// Returns domain.ErrGuestNotFound when no guest matches.
func (r *CredentialResolver) Resolve(ctx context.Context, email string) (*domain.Guest, error) {
	email = utils.NormalizeEmail(email)

	guest, err := r.guests.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up guest: %w", err)
	}
	if guest == nil {
		return nil, domain.ErrGuestNotFound
	}
	return guest, nil
}
