package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// DBRepository implements Repository using MySQL.
type DBRepository struct {
	db *sqlx.DB
}

// NewDBRepository creates a new DBRepository.
func NewDBRepository(db *sqlx.DB) *DBRepository {
	return &DBRepository{db: db}
}

// FindByPseudo returns the player with the given pseudo, or nil if absent.
func (r *DBRepository) FindByPseudo(ctx context.Context, pseudo string) (*Player, error) {
	var player Player
	err := r.db.GetContext(ctx, &player,
		"SELECT * FROM players WHERE pseudo = ?", pseudo)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("db.GetContext(player) > %w", err)
	}
	return &player, nil
}

// Create inserts a new player.
func (r *DBRepository) Create(ctx context.Context, player *Player) error {
	result, err := r.db.ExecContext(ctx,
		"INSERT INTO players (pseudo, pin_digest) VALUES (?, ?)",
		player.Pseudo, player.PINDigest)
	if err != nil {
		return fmt.Errorf("db.ExecContext(insert player) > %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("result.LastInsertId() > %w", err)
	}
	player.ID = id
	return nil
}
