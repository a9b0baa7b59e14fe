package docstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"coupon-shop-bot/internal/pkg/errs"
)

// FileStore keeps one file per document under a data directory. Updates are
// written to a temporary file and renamed into place so a crash mid-write
// never leaves a partially written document, and are fsynced before the
// rename so the contract of durability-before-return holds.
type FileStore struct {
	dir string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errs.Wrap(err, "failed to create data directory")
	}
	return &FileStore{
		dir:   dir,
		locks: make(map[string]*sync.Mutex),
	}, nil
}

func (s *FileStore) Load(_ context.Context, name string) ([]byte, error) {
	lock := s.lockFor(name)
	lock.Lock()
	defer lock.Unlock()

	return s.read(name)
}

func (s *FileStore) Update(_ context.Context, name string, fn UpdateFn) error {
	lock := s.lockFor(name)
	lock.Lock()
	defer lock.Unlock()

	current, err := s.read(name)
	if err != nil {
		return err
	}

	next, err := fn(current)
	if err != nil {
		if errors.Is(err, ErrAbort) {
			return nil
		}
		return err
	}

	return s.write(name, next)
}

func (s *FileStore) lockFor(name string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[name]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[name] = lock
	}
	return lock
}

func (s *FileStore) read(name string) ([]byte, error) {
	body, err := os.ReadFile(s.path(name))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errs.Wrap(err, "failed to read document")
	}
	return body, nil
}

func (s *FileStore) write(name string, body []byte) error {
	path := s.path(name)

	tmp, err := os.CreateTemp(s.dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return errs.Wrap(err, "failed to create temp document")
	}
	tmpName := tmp.Name()

	if _, err = tmp.Write(body); err == nil {
		err = tmp.Sync()
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmpName)
		return errs.Wrap(err, "failed to write document")
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return errs.Wrap(err, "failed to replace document")
	}
	return nil
}

func (s *FileStore) path(name string) string {
	return filepath.Join(s.dir, name)
}
