package users

import "errors"

var (
	// ErrRecordNotFound is returned by Fetch when the document is absent, the read fails, or
	// the store hands back an unusable result. Read failures keep their cause in the chain.
	ErrRecordNotFound = errors.New("user record not found")
	// ErrReadFailed marks the ErrRecordNotFound returned for a failed backend read, for callers
	// that must not treat an unreachable store as an absent record.
	ErrReadFailed = errors.New("user record read failed")
	// ErrDeserialization is returned by Fetch when a stored document cannot be decoded.
	ErrDeserialization = errors.New("user record malformed")
	// ErrInvalidID rejects operations on an empty user id.
	ErrInvalidID = errors.New("user id is required")
)
