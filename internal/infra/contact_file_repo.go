package infra

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/Vovarama1992/voice_agent/internal/ports"
)

// ContactFileRepo keeps submissions in a JSON array on disk. Used when no
// database is configured.
type ContactFileRepo struct {
	mu   sync.Mutex
	path string
}

func NewContactFileRepo(path string) (*ContactFileRepo, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(path, []byte("[]\n"), 0o644); err != nil {
			return nil, fmt.Errorf("init submissions file: %w", err)
		}
	}
	return &ContactFileRepo{path: path}, nil
}

func (r *ContactFileRepo) Create(ctx context.Context, c ports.Contact) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	raw, err := os.ReadFile(r.path)
	if err != nil {
		return 0, fmt.Errorf("read submissions: %w", err)
	}

	var all []ports.Contact
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &all); err != nil {
			return 0, fmt.Errorf("decode submissions: %w", err)
		}
	}

	c.ID = int64(len(all) + 1)
	all = append(all, c)

	out, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return 0, err
	}

	// пишем во временный файл и переименовываем
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, out, 0o644); err != nil {
		return 0, fmt.Errorf("write submissions: %w", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return 0, fmt.Errorf("replace submissions: %w", err)
	}
	return c.ID, nil
}
