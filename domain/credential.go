package domain

import "time"

// Credential is the authenticated identity and bearer token for the current
// user session. It is immutable once constructed: login and restore replace
// the whole value, never individual fields.
type Credential struct {
	RawToken      string
	SubjectID     int
	Username      string
	Email         string
	FullName      string
	EmailVerified bool
	Roles         []string
	ExpiresAt     time.Time
}

// Expired reports whether the credential's token lifetime has passed at the
// reference time. A nil credential is expired.
func (c *Credential) Expired(reference time.Time) bool {
	if c == nil {
		return true
	}
	if reference.IsZero() {
		reference = time.Now()
	}
	return !reference.Before(c.ExpiresAt)
}

// HasRole reports membership in the credential's role set.
func (c *Credential) HasRole(role string) bool {
	if c == nil {
		return false
	}
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}
