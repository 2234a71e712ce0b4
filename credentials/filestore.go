package credentials

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	consoleerrors "github.com/accessware/go-console/internal/errors"
	"github.com/pkg/errors"
)

// FileStore persists the token pair as a single JSON document on disk.
// The whole pair is written in one rename, so readers see either the
// previous pair or the new one, never a mix.
type FileStore struct {
	path string
	lock sync.Mutex
}

var _ Store = (*FileStore)(nil)

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Save(pair Pair) error {
	if !pair.Valid() {
		return consoleerrors.ErrPartialCredentials
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	data, err := json.Marshal(pair)
	if err != nil {
		return errors.Wrap(err, "FileStore.Save Marshal")
	}
	return atomicWrite(s.path, data)
}

func (s *FileStore) Load() (*Pair, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "FileStore.Load ReadFile")
	}

	return decodePair(data)
}

func (s *FileStore) Clear() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "FileStore.Clear Remove")
	}
	return nil
}

func decodePair(data []byte) (*Pair, error) {
	var pair Pair
	if err := json.Unmarshal(data, &pair); err != nil {
		return nil, consoleerrors.Wrapf(consoleerrors.ErrCorruptCredentials, "%s", err.Error())
	}
	if !pair.Valid() {
		return nil, consoleerrors.ErrCorruptCredentials
	}
	return &pair, nil
}

// atomicWrite lands data at path via a same-directory temp file and
// rename. Mode 0600: the file holds live credentials.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return errors.Wrap(err, "atomicWrite MkdirAll")
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*")
	if err != nil {
		return errors.Wrap(err, "atomicWrite CreateTemp")
	}
	tmpName := tmp.Name()

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrap(err, "atomicWrite Chmod")
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrap(err, "atomicWrite Write")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "atomicWrite Close")
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "atomicWrite Rename")
	}
	return nil
}
