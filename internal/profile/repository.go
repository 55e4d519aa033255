// Package profile manages user profiles: reads, validated field updates under
// a global username-uniqueness constraint, and profile picture replacement.
package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Profile is the persisted per-user record. Username and ProfilePictureURL
// are nil until first set.
type Profile struct {
	UserID            string    `json:"userId"`
	Username          *string   `json:"username,omitempty"`
	Bio               string    `json:"bio"`
	ProfilePictureURL *string   `json:"profilePictureUrl,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// UpdateFields carries a partial update: only non-nil fields are written.
type UpdateFields struct {
	Username          *string
	Bio               *string
	ProfilePictureURL *string
}

// Repository is the persistence surface the service depends on. All methods
// are single-row atomic as provided by the underlying store; the unique index
// on username is the canonical arbiter for cross-row username conflicts.
type Repository interface {
	// Find returns the profile for userID, or ErrNotFound.
	Find(ctx context.Context, userID string) (*Profile, error)
	// FindByUsername returns the owning user's ID for an exact (stored,
	// already-lowercased) username, or ErrNotFound when the name is free.
	FindByUsername(ctx context.Context, username string) (string, error)
	// Update writes the supplied fields only. Returns ErrNotFound when no
	// profile row exists and ErrUsernameTaken when the username unique
	// index rejects the write.
	Update(ctx context.Context, userID string, fields UpdateFields) (*Profile, error)
}

// PostgresRepository implements Repository over a pgx connection pool.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a PostgresRepository with the given pool.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Find fetches a profile by the owning user's UUID.
func (r *PostgresRepository) Find(ctx context.Context, userID string) (*Profile, error) {
	p := &Profile{}
	err := r.db.QueryRow(ctx,
		`SELECT user_id, username, bio, profile_picture_url, created_at, updated_at
		 FROM profiles WHERE user_id = $1`,
		userID,
	).Scan(&p.UserID, &p.Username, &p.Bio, &p.ProfilePictureURL, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find profile: %w", err)
	}
	return p, nil
}

// FindByUsername returns the user ID owning the given username.
func (r *PostgresRepository) FindByUsername(ctx context.Context, username string) (string, error) {
	var ownerID string
	err := r.db.QueryRow(ctx,
		`SELECT user_id FROM profiles WHERE username = $1`,
		username,
	).Scan(&ownerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("find profile by username: %w", err)
	}
	return ownerID, nil
}

// Update persists the non-nil fields and returns the updated profile.
func (r *PostgresRepository) Update(ctx context.Context, userID string, fields UpdateFields) (*Profile, error) {
	set := []string{"updated_at = NOW()"}
	args := []interface{}{userID}

	appendSet := func(column string, value *string) {
		if value == nil {
			return
		}
		args = append(args, *value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	appendSet("username", fields.Username)
	appendSet("bio", fields.Bio)
	appendSet("profile_picture_url", fields.ProfilePictureURL)

	p := &Profile{}
	err := r.db.QueryRow(ctx,
		fmt.Sprintf(
			`UPDATE profiles SET %s WHERE user_id = $1
			 RETURNING user_id, username, bio, profile_picture_url, created_at, updated_at`,
			strings.Join(set, ", "),
		),
		args...,
	).Scan(&p.UserID, &p.Username, &p.Bio, &p.ProfilePictureURL, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return p, nil
}

// isUniqueViolation checks whether an error is a PostgreSQL unique_violation (code 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
