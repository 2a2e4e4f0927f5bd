package authkit

import "time"

// DefaultRole is assigned to every user at signup.
const DefaultRole = "USER"

// User is the credential record persisted by a CredentialStore.
type User struct {
	UserID       string
	Username     string
	PasswordHash string
	FirstName    string
	LastName     string
	Email        string
	PhoneNumber  int64
	Roles        []string
}

// RefreshToken is the single active long-lived credential for a user.
type RefreshToken struct {
	ID         uint
	Token      string
	UserID     string
	ExpiryDate time.Time
}
