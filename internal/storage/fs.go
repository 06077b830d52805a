package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/lutyjj/photkey-server/internal/domain"
)

// ContentStore is durable byte storage addressed by directory and file name.
type ContentStore interface {
	Save(ctx context.Context, dir, name string, data []byte) error
	Open(ctx context.Context, dir, name string) ([]byte, error)
}

type fsStore struct {
	log *zap.Logger
}

func NewFSStore(log *zap.Logger) ContentStore {
	return &fsStore{log: log}
}

// Save writes photo bytes to dir/name, creating the directory if needed
// and overwriting an existing file at the same path.
func (s *fsStore) Save(ctx context.Context, dir, name string, data []byte) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create upload directory %s: %w", dir, err)
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	s.log.Info("File saved",
		zap.String("path", path),
		zap.Int("size", len(data)))

	return nil
}

func (s *fsStore) Open(ctx context.Context, dir, name string) ([]byte, error) {
	path := filepath.Join(dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrContentNotFound, path)
		}
		return nil, err
	}
	return data, nil
}
