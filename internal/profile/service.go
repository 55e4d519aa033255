package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Service contains the business logic for profile management. It holds no
// mutable state of its own: every call is an independent unit of work, and
// all consistency guarantees are delegated to the repository's store.
type Service struct {
	repo     Repository
	uploader Uploader
	validate *validator.Validate
}

// NewService creates a profile Service.
func NewService(repo Repository, uploader Uploader) *Service {
	return &Service{
		repo:     repo,
		uploader: uploader,
		validate: validator.New(),
	}
}

// UpdateInput carries the caller-supplied profile fields. Nil means the field
// was absent from the request and must be left untouched.
type UpdateInput struct {
	Username *string
	Bio      *string
}

// Get returns the user's profile, or ErrNotFound. Pure read, no side effects.
func (s *Service) Get(ctx context.Context, userID string) (*Profile, error) {
	return s.repo.Find(ctx, userID)
}

// Update validates and persists the supplied fields. Validation is
// all-or-nothing: any invalid field rejects the whole update before any side
// effect. Supplied fields equal to the current values are dropped from the
// write; when nothing remains the current profile is returned unwritten.
//
// A changed username is probed first so the common conflict fails fast, but
// the probe is only an optimization: a concurrent writer slipping between
// probe and write loses on the database unique index, which the repository
// reports as the same ErrUsernameTaken.
func (s *Service) Update(ctx context.Context, userID string, in UpdateInput) (*Profile, error) {
	var username *string
	if in.Username != nil {
		normalized, err := s.normalizeUsername(*in.Username)
		if err != nil {
			return nil, err
		}
		username = &normalized
	}
	if in.Bio != nil {
		if err := s.validate.Var(*in.Bio, "max=300"); err != nil {
			return nil, &ValidationError{Field: "bio", Message: "bio must be at most 300 characters"}
		}
	}

	current, err := s.repo.Find(ctx, userID)
	if err != nil {
		return nil, err
	}

	fields := UpdateFields{}
	if username != nil && (current.Username == nil || *current.Username != *username) {
		fields.Username = username
	}
	if in.Bio != nil && *in.Bio != current.Bio {
		fields.Bio = in.Bio
	}
	if fields == (UpdateFields{}) {
		return current, nil
	}

	if fields.Username != nil {
		ownerID, err := s.repo.FindByUsername(ctx, *fields.Username)
		switch {
		case err == nil && ownerID != userID:
			return nil, ErrUsernameTaken
		case err != nil && !errors.Is(err, ErrNotFound):
			return nil, fmt.Errorf("probe username: %w", err)
		}
	}

	return s.repo.Update(ctx, userID, fields)
}

// ReplacePicture uploads the image and persists the resulting URL, strictly
// in that order: the profile never points at an object that was not written.
// A failed upload leaves the profile untouched. A failed persist after a
// successful upload leaves an orphaned object at the user's stable key; the
// next successful replacement overwrites it, so the caller just retries.
func (s *Service) ReplacePicture(ctx context.Context, userID string, image []byte) (*Profile, error) {
	if len(image) == 0 {
		return nil, &ValidationError{Field: "image", Message: "image payload is empty"}
	}

	url, err := s.uploader.Upload(ctx, userID, image)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	updated, err := s.repo.Update(ctx, userID, UpdateFields{ProfilePictureURL: &url})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistFailed, err)
	}
	return updated, nil
}

// CheckUsername reports whether the normalized username is free to claim.
// Advisory only: the answer can go stale the moment it is produced, and the
// unique index still decides the eventual write.
func (s *Service) CheckUsername(ctx context.Context, username string) (bool, error) {
	normalized, err := s.normalizeUsername(username)
	if err != nil {
		return false, err
	}

	_, err = s.repo.FindByUsername(ctx, normalized)
	if errors.Is(err, ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("probe username: %w", err)
	}
	return false, nil
}

// normalizeUsername trims, lowercases, and bounds-checks a username.
func (s *Service) normalizeUsername(username string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(username))
	if err := s.validate.Var(normalized, "min=3,max=16"); err != nil {
		return "", &ValidationError{Field: "username", Message: "username must be 3-16 characters"}
	}
	return normalized, nil
}
