// Package identity resolves a display handle plus a private PIN to a
// stable identity used for attempt attribution. Once resolved, the rest of
// the application treats the identity as an opaque string.
package identity

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

//go:generate mockgen -source=identity.go -destination=../mocks/identity/mock_repository.go -package=mock_identity Repository

// ErrPINMismatch is returned when a pseudo exists but the PIN is wrong.
// A wrong PIN never silently creates a second player.
var ErrPINMismatch = errors.New("PIN does not match")

// Player is one registered learner.
type Player struct {
	ID        int64     `db:"id"`
	Pseudo    string    `db:"pseudo"`
	PINDigest string    `db:"pin_digest"`
	CreatedAt time.Time `db:"created_at"`
}

// Repository defines player lookup and creation.
type Repository interface {
	// FindByPseudo returns nil without error when the pseudo is unknown.
	FindByPseudo(ctx context.Context, pseudo string) (*Player, error)
	Create(ctx context.Context, player *Player) error
}

// Resolver implements find-or-create resolution over a Repository.
type Resolver struct {
	repository Repository
}

// NewResolver creates a new Resolver.
func NewResolver(repository Repository) *Resolver {
	return &Resolver{repository: repository}
}

// Resolve returns the identity for pseudo. An unknown pseudo is registered
// with the PIN's digest; a known pseudo must present a matching PIN.
func (r *Resolver) Resolve(ctx context.Context, pseudo, pin string) (string, error) {
	digest := DigestPIN(pin)

	player, err := r.repository.FindByPseudo(ctx, pseudo)
	if err != nil {
		return "", fmt.Errorf("repository.FindByPseudo() > %w", err)
	}
	if player == nil {
		player = &Player{Pseudo: pseudo, PINDigest: digest}
		if err := r.repository.Create(ctx, player); err != nil {
			return "", fmt.Errorf("repository.Create() > %w", err)
		}
		return pseudo, nil
	}

	if subtle.ConstantTimeCompare([]byte(player.PINDigest), []byte(digest)) != 1 {
		return "", ErrPINMismatch
	}
	return pseudo, nil
}

// DigestPIN returns the hex SHA-256 digest of a PIN.
func DigestPIN(pin string) string {
	sum := sha256.Sum256([]byte(pin))
	return hex.EncodeToString(sum[:])
}
