package ports

import "context"

// AudioStore keeps synthesized replies somewhere the caller can fetch them.
type AudioStore interface {
	// Save stores data under name and returns the URL it is served from.
	Save(ctx context.Context, name string, data []byte, contentType string) (string, error)
}
