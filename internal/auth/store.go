package auth

import (
	"errors"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrOperatorExists     = errors.New("operator already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type Operator struct {
	Name string
	Hash []byte
	Role string
}

// Store holds the operators allowed to mutate the catalog. They come from
// configuration, so there is no persistence here.
type Store struct {
	mu     sync.RWMutex
	byName map[string]Operator
}

func NewStore() *Store {
	return &Store{byName: make(map[string]Operator)}
}

func HashPassword(password string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
}

// AddHash registers an operator from an already computed bcrypt hash.
func (s *Store) AddHash(name string, hash []byte, role string) error {
	name = normalizeName(name)

	if _, err := bcrypt.Cost(hash); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byName[name]; ok {
		return ErrOperatorExists
	}

	s.byName[name] = Operator{Name: name, Hash: hash, Role: role}
	return nil
}

func (s *Store) Verify(name, password string) (Operator, error) {
	name = normalizeName(name)

	s.mu.RLock()
	op, ok := s.byName[name]
	s.mu.RUnlock()

	if !ok {
		return Operator{}, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword(op.Hash, []byte(strings.TrimSpace(password))); err != nil {
		return Operator{}, ErrInvalidCredentials
	}

	return op, nil
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
