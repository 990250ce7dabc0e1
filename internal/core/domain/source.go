package domain

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrSnapshotNotFound  = errors.New("activity snapshot not found")
	ErrSourceUnavailable = errors.New("activity source unavailable")
	ErrSnapshotConflict  = errors.New("snapshot already stored for this fetch time")
	ErrInvalidUsername   = errors.New("invalid username")
)

type ActivitySource interface {
	// FetchCalendar returns the full contribution series of a user, oldest day first.
	FetchCalendar(ctx context.Context, username string) (*Calendar, error)
}

type SnapshotRepository interface {
	ActivitySource

	// Save stores a fetched calendar as a new snapshot.
	Save(ctx context.Context, cal *Calendar) error

	// Latest returns the most recent snapshot stored for the user.
	Latest(ctx context.Context, username string) (*Calendar, error)
}

var usernamePattern = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9]|-[a-z0-9]){0,38}$`)

// NormalizeUsername lower-cases a login and checks it against the GitHub
// rules (alphanumerics and single inner hyphens, at most 39 characters).
func NormalizeUsername(username string) (string, error) {
	u := strings.ToLower(strings.TrimSpace(username))
	if len(u) > 39 || !usernamePattern.MatchString(u) {
		return "", fmt.Errorf("%w: %q", ErrInvalidUsername, username)
	}
	return u, nil
}
