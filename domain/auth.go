package domain

// LoginRequest is the sign-in payload.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SignupRequest registers a new customer account. Customer accounts use the
// email address as the username.
type SignupRequest struct {
	Username    string   `json:"username"`
	Email       string   `json:"email"`
	Password    string   `json:"password"`
	FirstName   string   `json:"firstName"`
	LastName    string   `json:"lastName"`
	PhoneNumber string   `json:"phoneNumber,omitempty"`
	Roles       []string `json:"role,omitempty"`
}

// JwtResponse is the backend's sign-in response. This exact record is also
// the persisted credential blob in the local secure store, so its lifetime is
// independent of the in-memory Credential built from it.
type JwtResponse struct {
	Token         string   `json:"token"`
	Type          string   `json:"type,omitempty"`
	ID            int      `json:"id"`
	Username      string   `json:"username"`
	Email         string   `json:"email"`
	FullName      string   `json:"fullName,omitempty"`
	EmailVerified bool     `json:"emailVerified,omitempty"`
	Roles         []string `json:"roles,omitempty"`
}

// MessageResponse is the backend's generic acknowledgment payload.
type MessageResponse struct {
	Message string `json:"message"`
}
