package repository

import "github.com/freshcart/shopkit/domain"

// CredentialStore persists the serialized credential record with
// encrypted-at-rest semantics. Its copy survives process restarts and lives
// independently of the in-memory session state.
type CredentialStore interface {
	// Put replaces the stored credential record.
	Put(resp *domain.JwtResponse) error
	// Get returns the stored record, or (nil, nil) when none is present.
	Get() (*domain.JwtResponse, error)
	// Delete removes the stored record. Deleting an absent record is not an
	// error.
	Delete() error
}
