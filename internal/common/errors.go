// Package common defines shared constants, helpers and sentinel errors used
// across the recipekeeper server and admin tooling. Callers should use
// errors.Is to match these values.
package common

import "errors"

var (
	// repository specific errors
	ErrorNotFound = errors.New("not found")

	// ErrAlreadyExists is returned when an account with the given email
	// is already registered.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidCredentials covers both an unknown email and a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrStoreUnavailable wraps any failure of the backing record store.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrMalformedDigest marks a stored credential digest that cannot be decoded.
	// Verification reports it as a plain mismatch; it is never returned to callers
	// of the auth service.
	ErrMalformedDigest = errors.New("malformed digest")

	// ErrStoreClosed is returned by a store handle used after Close.
	ErrStoreClosed = errors.New("store closed")
)
