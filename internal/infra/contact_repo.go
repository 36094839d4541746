package infra

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/Vovarama1992/voice_agent/internal/ports"
)

type ContactRepo struct {
	db *sql.DB
}

func NewContactRepo(db *sql.DB) *ContactRepo {
	return &ContactRepo{db: db}
}

// Migrate creates the submissions table if it is missing.
func (r *ContactRepo) Migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS contact_submissions (
			id         BIGSERIAL PRIMARY KEY,
			name       TEXT NOT NULL,
			email      TEXT NOT NULL,
			plan       TEXT,
			message    TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	return err
}

func (r *ContactRepo) Create(ctx context.Context, c ports.Contact) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO contact_submissions (name, email, plan, message, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, c.Name, c.Email, c.Plan, c.Message, c.CreatedAt).Scan(&id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			return 0, fmt.Errorf("insert contact (%s): %w", pqErr.Code.Name(), err)
		}
		return 0, fmt.Errorf("insert contact: %w", err)
	}
	return id, nil
}
