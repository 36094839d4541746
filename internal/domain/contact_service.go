package domain

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/Vovarama1992/voice_agent/internal/ports"
)

var ErrInvalidContact = errors.New("invalid contact")

type ContactInput struct {
	Name    string
	Email   string
	Plan    string
	Message string
}

type ContactService struct {
	repo ports.ContactRepo
	now  func() time.Time
}

func NewContactService(repo ports.ContactRepo) *ContactService {
	return &ContactService{repo: repo, now: time.Now}
}

func (s *ContactService) Submit(ctx context.Context, in ContactInput) (int64, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(in.Email)

	if name == "" || email == "" {
		return 0, fmt.Errorf("%w: name and email are required", ErrInvalidContact)
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return 0, fmt.Errorf("%w: malformed email %q", ErrInvalidContact, email)
	}

	return s.repo.Create(ctx, ports.Contact{
		Name:      name,
		Email:     email,
		Plan:      optional(in.Plan),
		Message:   optional(in.Message),
		CreatedAt: s.now().UTC(),
	})
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
