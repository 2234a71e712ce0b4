package storefake

import (
	"sync"

	"github.com/accessware/go-console/credentials"
)

var _ credentials.Store = (*FakeCredentialStore)(nil)

type FakeCredentialStore struct {
	pair   *credentials.Pair
	saves  int
	clears int

	SaveErr  error
	LoadErr  error
	ClearErr error

	lock sync.RWMutex
}

func NewFakeCredentialStore() *FakeCredentialStore {
	return &FakeCredentialStore{}
}

func (s *FakeCredentialStore) Save(pair credentials.Pair) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.saves++
	copied := pair
	s.pair = &copied
	return nil
}

func (s *FakeCredentialStore) Load() (*credentials.Pair, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	if s.LoadErr != nil {
		return nil, s.LoadErr
	}
	if s.pair == nil {
		return nil, nil
	}
	copied := *s.pair
	return &copied, nil
}

func (s *FakeCredentialStore) Clear() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.ClearErr != nil {
		return s.ClearErr
	}
	s.clears++
	s.pair = nil
	return nil
}

func (s *FakeCredentialStore) Saves() int {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.saves
}

func (s *FakeCredentialStore) Clears() int {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.clears
}
