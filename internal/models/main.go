// Package models defines the core data structures for accounts and stored files.
package models

import "time"

// Account represents one registrable user of the service.
type Account struct {
	// ID is the unique identifier for the account. Assigned once by the
	// credential store and never reused, even after deletions.
	ID int64 `json:"id"`
	// Username is the login name chosen by the user. Unique and case-sensitive.
	Username string `json:"username"`
	// PasswordHash is the salted one-way hash of the password.
	PasswordHash string `json:"-"`
	// Activated reports whether the account may log in without presenting
	// an activation code.
	Activated bool `json:"activated"`
	// ActivationCode is the short numeric code the account must present once
	// during login. Nil whenever Activated is true.
	ActivationCode *string `json:"-"`
	// ActivationExpires is the deadline for presenting ActivationCode.
	// Nil whenever Activated is true.
	ActivationExpires *time.Time `json:"-"`
	// CreatedAt is the registration timestamp.
	CreatedAt time.Time `json:"created_at"`
}

// StoredFile describes one entry in the shared upload directory.
// Files carry no owner and no id; the sanitized name is their sole identity.
type StoredFile struct {
	// Name is the sanitized filename, safe as a single path segment.
	Name string `json:"name"`
	// Size is the file size in bytes.
	Size int64 `json:"size"`
	// ModifiedAt is the last write time.
	ModifiedAt time.Time `json:"modified_at"`
}
