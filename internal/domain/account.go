package domain

import "time"

// Account is the authentication principal keyed by email.
// Its profile row may be missing when sign-up partially failed.
type Account struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
