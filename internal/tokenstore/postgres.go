package tokenstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const createTokensTable = `
CREATE TABLE IF NOT EXISTS client_tokens (
	profile    TEXT PRIMARY KEY,
	token      TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresStore keeps one token row per profile name.
type PostgresStore struct {
	db      *pgxpool.Pool
	profile string
}

func NewPostgresStore(db *pgxpool.Pool, profile string) *PostgresStore {
	if profile == "" {
		profile = "default"
	}
	return &PostgresStore{db: db, profile: profile}
}

func (p *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.Exec(ctx, createTokensTable); err != nil {
		return fmt.Errorf("failed to create client_tokens table: %w", err)
	}
	return nil
}

func (p *PostgresStore) Get(ctx context.Context) (string, error) {
	var token string
	err := p.db.QueryRow(ctx, `SELECT token FROM client_tokens WHERE profile = $1`, p.profile).Scan(&token)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	return token, nil
}

func (p *PostgresStore) Set(ctx context.Context, token string) error {
	query := `
	INSERT INTO client_tokens (profile, token, updated_at)
	VALUES ($1, $2, now())
	ON CONFLICT (profile)
	DO UPDATE SET token = EXCLUDED.token, updated_at = now()
	`
	if _, err := p.db.Exec(ctx, query, p.profile, token); err != nil {
		return fmt.Errorf("failed to write token: %w", err)
	}
	return nil
}

func (p *PostgresStore) Delete(ctx context.Context) error {
	if _, err := p.db.Exec(ctx, `DELETE FROM client_tokens WHERE profile = $1`, p.profile); err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}
