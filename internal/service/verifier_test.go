package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/harborview/guestgate/internal/domain"
)

func issueTestToken(t *testing.T, repo *memTokens, guestID int64, clock func() time.Time) string {
	t.Helper()
	issuer := NewTokenIssuer(repo, "http://localhost:5173", 15*time.Minute)
	issuer.now = clock
	link, err := issuer.Issue(context.Background(), &domain.Guest{ID: guestID, AuthMethod: domain.AuthMagicLink}, domain.Provenance{})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	return link.Token
}

func TestVerifyConsumesExactlyOnce(t *testing.T) {
	now := time.Now()
	repo := newMemTokens(func() time.Time { return now })
	v := NewTokenVerifier(repo)

	token := issueTestToken(t, repo, 7, func() time.Time { return now })

	guestID, err := v.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("first verify: %v", err)
	}
	if guestID != 7 {
		t.Fatalf("got guest %d, want 7", guestID)
	}

	if _, err := v.Verify(context.Background(), token); !errors.Is(err, domain.ErrTokenUsed) {
		t.Fatalf("second verify: got %v, want ErrTokenUsed", err)
	}
}

func TestVerifyConcurrentRedemptions(t *testing.T) {
	now := time.Now()
	repo := newMemTokens(func() time.Time { return now })
	v := NewTokenVerifier(repo)

	token := issueTestToken(t, repo, 3, func() time.Time { return now })

	const n = 32
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		valid int
		used  int
	)
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := v.Verify(context.Background(), token)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				valid++
			case errors.Is(err, domain.ErrTokenUsed):
				used++
			default:
				t.Errorf("unexpected verify result: %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()

	if valid != 1 {
		t.Fatalf("got %d successful redemptions, want exactly 1", valid)
	}
	if used != n-1 {
		t.Fatalf("got %d ErrTokenUsed, want %d", used, n-1)
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	repo := newMemTokens(func() time.Time { return now })
	v := NewTokenVerifier(repo)

	token := issueTestToken(t, repo, 5, clock)

	// 16 minutes later the 15-minute token is dead, consumed or not.
	now = now.Add(16 * time.Minute)

	if _, err := v.Verify(context.Background(), token); !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("got %v, want ErrTokenExpired", err)
	}

	// Still expired on a retry, never ErrTokenUsed.
	if _, err := v.Verify(context.Background(), token); !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("retry: got %v, want ErrTokenExpired", err)
	}
}

func TestVerifyMalformedSkipsStorage(t *testing.T) {
	repo := newMemTokens(time.Now)
	v := NewTokenVerifier(repo)

	cases := []string{
		"",
		"short",
		strings.Repeat("g", 64),               // not hex
		strings.Repeat("A", 64),               // uppercase not accepted
		strings.Repeat("a", 63),               // wrong length
		strings.Repeat("a", 65),
	}
	for _, raw := range cases {
		if _, err := v.Verify(context.Background(), raw); !errors.Is(err, domain.ErrTokenMalformed) {
			t.Errorf("Verify(%q): got %v, want ErrTokenMalformed", raw, err)
		}
	}

	if repo.consumes != 0 {
		t.Fatalf("storage touched %d times for malformed input, want 0", repo.consumes)
	}
}

func TestVerifyUnknownToken(t *testing.T) {
	repo := newMemTokens(time.Now)
	v := NewTokenVerifier(repo)

	if _, err := v.Verify(context.Background(), strings.Repeat("ab", 32)); !errors.Is(err, domain.ErrTokenNotFound) {
		t.Fatalf("got %v, want ErrTokenNotFound", err)
	}
}
