package bolt

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"errors"
	"os"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/freshcart/shopkit/domain"
	"github.com/freshcart/shopkit/repository"
)

// CredentialStore seals the credential record with XChaCha20-Poly1305 before
// writing it, so the blob at rest never contains the bearer token in clear.
// The sealing key lives in a 0600 sidecar file next to the database.
type CredentialStore struct {
	db   *DB
	aead cipher.AEAD
}

var _ repository.CredentialStore = (*CredentialStore)(nil)

// NewCredentialStore loads or creates the sealing key at keyPath and binds
// the store to the credential bucket.
func NewCredentialStore(db *DB, keyPath string) (*CredentialStore, error) {
	key, err := loadOrCreateKey(keyPath)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	return &CredentialStore{db: db, aead: aead}, nil
}

func (s *CredentialStore) Put(resp *domain.JwtResponse) error {
	plain, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	sealed, err := s.seal(plain)
	if err != nil {
		return err
	}
	return s.db.put(credentialBucket, credentialKey, sealed)
}

func (s *CredentialStore) Get() (*domain.JwtResponse, error) {
	blob, err := s.db.get(credentialBucket, credentialKey)
	if err != nil {
		return nil, err
	}
	if blob == nil {
		return nil, nil
	}
	plain, err := s.open(blob)
	if err != nil {
		return nil, err
	}
	var resp domain.JwtResponse
	if err := json.Unmarshal(plain, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *CredentialStore) Delete() error {
	return s.db.delete(credentialBucket, credentialKey)
}

func (s *CredentialStore) seal(plain []byte) ([]byte, error) {
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(nonce)+len(plain)+s.aead.Overhead())
	out = append(out, nonce...)
	return s.aead.Seal(out, nonce, plain, nil), nil
}

func (s *CredentialStore) open(blob []byte) ([]byte, error) {
	if len(blob) < chacha20poly1305.NonceSizeX {
		return nil, errors.New("sealed credential too short")
	}
	nonce, ct := blob[:chacha20poly1305.NonceSizeX], blob[chacha20poly1305.NonceSizeX:]
	return s.aead.Open(nil, nonce, ct, nil)
}

func loadOrCreateKey(path string) ([]byte, error) {
	key, err := os.ReadFile(path)
	if err == nil && len(key) == chacha20poly1305.KeySize {
		return key, nil
	}
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	key = make([]byte, chacha20poly1305.KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, key, 0o600); err != nil {
		return nil, err
	}
	return key, nil
}
