package domain

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vovarama1992/voice_agent/internal/ports"
)

type fakeContactRepo struct {
	saved []ports.Contact
	err   error
}

func (f *fakeContactRepo) Create(_ context.Context, c ports.Contact) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.saved = append(f.saved, c)
	return int64(len(f.saved)), nil
}

func TestContactService_Submit(t *testing.T) {
	repo := &fakeContactRepo{}
	svc := NewContactService(repo)
	svc.now = func() time.Time { return time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC) }

	id, err := svc.Submit(t.Context(), ContactInput{
		Name:  "  Ann ",
		Email: "ann@example.com",
		Plan:  "pro",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	require.Len(t, repo.saved, 1)
	c := repo.saved[0]
	assert.Equal(t, "Ann", c.Name)
	assert.Equal(t, "pro", *c.Plan)
	assert.Nil(t, c.Message)
	assert.Equal(t, time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC), c.CreatedAt)
}

func TestContactService_Submit_Invalid(t *testing.T) {
	svc := NewContactService(&fakeContactRepo{})

	cases := []ContactInput{
		{Email: "ann@example.com"},
		{Name: "Ann"},
		{Name: "Ann", Email: "not-an-email"},
		{Name: "Ann", Email: "Ann <ann@example.com>"},
	}
	for _, in := range cases {
		_, err := svc.Submit(t.Context(), in)
		assert.ErrorIs(t, err, ErrInvalidContact, "%+v", in)
	}
}

func TestContactService_Submit_RepoError(t *testing.T) {
	boom := errors.New("disk full")
	_, err := NewContactService(&fakeContactRepo{err: boom}).Submit(t.Context(), ContactInput{Name: "A", Email: "a@example.com"})
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrInvalidContact)
}
