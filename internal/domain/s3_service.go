package domain

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/Vovarama1992/voice_agent/internal/ports"
)

type s3AudioStore struct {
	client ports.S3Client
	now    func() time.Time
}

// NewS3AudioStore keeps generated audio in the bucket behind client.
func NewS3AudioStore(client ports.S3Client) ports.AudioStore {
	return &s3AudioStore{client: client, now: time.Now}
}

// ObjectKey — путь в бакете
func (s *s3AudioStore) ObjectKey(filename string) string {
	date := s.now().Format("2006-01-02")
	clean := filepath.Base(filename)
	return fmt.Sprintf("tts/%s/%s", date, clean)
}

func (s *s3AudioStore) Save(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("name required")
	}
	return s.client.PutObject(ctx, s.ObjectKey(name), bytes.NewReader(data), int64(len(data)), contentType)
}
