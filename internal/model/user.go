// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account on the scholarship API.
//
// Accounts are email/password based. The email is stored lowercased and is
// UNIQUE in the database, so it doubles as the login identifier. The internal
// ID is an xid string, generated by the repository on Create.
//
// WHY PasswordHash HAS json:"-":
// The hash must never leave the server. The "-" tag tells encoding/json to
// skip the field entirely, so even a handler that accidentally encodes a
// whole User cannot leak it.
type User struct {
	ID           string    `json:"id"         db:"id"`
	FirstName    string    `json:"first_name" db:"first_name"`
	LastName     string    `json:"last_name"  db:"last_name"`
	Email        string    `json:"email"      db:"email"`
	PasswordHash string    `json:"-"          db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
