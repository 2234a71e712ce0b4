package credentials

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"os"
	"sync"

	consoleerrors "github.com/accessware/go-console/internal/errors"
	"github.com/pkg/errors"
	"golang.org/x/crypto/chacha20poly1305"
)

// EncryptedStore is a Store that seals the pair with XChaCha20-Poly1305
// before it touches disk. Layout on disk: random nonce followed by the
// ciphertext of the same JSON document FileStore writes.
type EncryptedStore struct {
	path string
	aead cipher.AEAD
	lock sync.Mutex
}

var _ Store = (*EncryptedStore)(nil)

// NewEncryptedStore creates a store keyed with a 32-byte key.
func NewEncryptedStore(path string, key []byte) (*EncryptedStore, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, errors.Wrap(err, "NewEncryptedStore chacha20poly1305.NewX")
	}
	return &EncryptedStore{path: path, aead: aead}, nil
}

func (s *EncryptedStore) Save(pair Pair) error {
	if !pair.Valid() {
		return consoleerrors.ErrPartialCredentials
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	plaintext, err := json.Marshal(pair)
	if err != nil {
		return errors.Wrap(err, "EncryptedStore.Save Marshal")
	}

	nonce := make([]byte, s.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return errors.Wrap(err, "EncryptedStore.Save rand.Read")
	}

	sealed := s.aead.Seal(nonce, nonce, plaintext, nil)
	return atomicWrite(s.path, sealed)
}

func (s *EncryptedStore) Load() (*Pair, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	sealed, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "EncryptedStore.Load ReadFile")
	}

	if len(sealed) < s.aead.NonceSize() {
		return nil, consoleerrors.ErrCorruptCredentials
	}
	nonce, ciphertext := sealed[:s.aead.NonceSize()], sealed[s.aead.NonceSize():]

	plaintext, err := s.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, consoleerrors.Wrapf(consoleerrors.ErrCorruptCredentials, "decrypt")
	}

	return decodePair(plaintext)
}

func (s *EncryptedStore) Clear() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "EncryptedStore.Clear Remove")
	}
	return nil
}
