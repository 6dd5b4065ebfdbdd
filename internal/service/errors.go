package service

import "errors"

// Registration errors
var (
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrUsernameTaken    = errors.New("username already exists")
)

// Login errors
var (
	// ErrInvalidCredentials covers both unknown username and wrong password
	// so the response never reveals which usernames are registered.
	ErrInvalidCredentials    = errors.New("invalid username or password")
	ErrActivationCodeInvalid = errors.New("invalid activation code")
	ErrActivationCodeExpired = errors.New("activation code expired")
)

// Validation errors (client input)
var (
	ErrUsernameRequired = errors.New("username is required")
	ErrPasswordRequired = errors.New("password is required")
)
