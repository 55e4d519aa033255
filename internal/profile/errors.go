package profile

import "errors"

// ErrNotFound is returned when no profile row exists for the user. An
// authenticated user always has a provisioned profile, so seeing this on a
// write path indicates a data-integrity fault rather than a caller mistake.
var ErrNotFound = errors.New("profile not found")

// ErrUsernameTaken is returned when the requested username belongs to another
// user, whether caught by the pre-check or by the database unique index.
var ErrUsernameTaken = errors.New("username already taken")

// ErrUploadFailed is returned when the avatar could not be written to object
// storage. The profile is left untouched; re-invoking is safe.
var ErrUploadFailed = errors.New("avatar upload failed")

// ErrStorageRejected is returned by the uploader when the storage backend
// rejects the write.
var ErrStorageRejected = errors.New("storage rejected write")

// ErrPersistFailed is returned when the avatar reached storage but the URL
// could not be written to the profile. The orphaned object is overwritten by
// the next successful replacement, so no cleanup is required.
var ErrPersistFailed = errors.New("avatar url persistence failed")

// ValidationError reports a malformed input attributable to a single field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
