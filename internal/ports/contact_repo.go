package ports

import (
	"context"
	"time"
)

type Contact struct {
	ID        int64     `json:"id,omitempty"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Plan      *string   `json:"plan"`
	Message   *string   `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

type ContactRepo interface {
	Create(ctx context.Context, c Contact) (int64, error)
}
