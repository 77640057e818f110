package storage

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// LocalStore keeps receipts under {root}/{userID}/.
type LocalStore struct {
	root string
}

func NewLocalStore(root string) *LocalStore {
	return &LocalStore{root: root}
}

func (s *LocalStore) dir(userID string) string {
	return filepath.Join(s.root, filepath.Base(userID))
}

func (s *LocalStore) List(ctx context.Context, userID string) ([]Object, error) {
	entries, err := os.ReadDir(s.dir(userID))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var out []Object
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, err
		}
		out = append(out, Object{Name: e.Name(), Size: info.Size()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, ctx.Err()
}

func (s *LocalStore) Download(ctx context.Context, userID, name string) ([]byte, error) {
	n, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(filepath.Join(s.dir(userID), n))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	return b, err
}

func (s *LocalStore) Upload(ctx context.Context, userID, name string, data []byte) error {
	n, err := cleanName(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir(userID), 0755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.dir(userID), n), data, 0644)
}
