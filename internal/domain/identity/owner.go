package identity

import (
	"regexp"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/corsair/backend/internal/domain/shared"
)

// bcrypt cost for password hashing
const bcryptCost = 12

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_\-.]+$`)

// Owner is the account an expedition owner authenticates with. Its ID is
// the owner reference carried in JWT claims and stamped on expeditions.
// Owners authenticate with a password; the per-expedition owner key stays
// a separate secret and is never stored here.
type Owner struct {
	shared.BaseAggregateRoot
	Username       string
	DisplayName    string
	PasswordHash   string
	FailedAttempts int
	LockedUntil    *time.Time
	LastLoginAt    *time.Time
}

// NewOwner creates an owner account with a bcrypt-hashed password
func NewOwner(username, displayName, password string) (*Owner, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	if len(displayName) > 200 {
		return nil, shared.NewValidationError("INVALID_DISPLAY_NAME", "Display name cannot exceed 200 characters")
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, shared.NewUpstreamError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	return &Owner{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Username:          username,
		DisplayName:       strings.TrimSpace(displayName),
		PasswordHash:      hash,
	}, nil
}

// VerifyPassword reports whether the password matches the stored hash
func (o *Owner) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(o.PasswordHash), []byte(password)) == nil
}

// ChangePassword replaces the password after verifying the current one
func (o *Owner) ChangePassword(oldPassword, newPassword string) error {
	if !o.VerifyPassword(oldPassword) {
		return shared.NewSecurityError("INVALID_PASSWORD", "Current password is incorrect")
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	hash, err := hashPassword(newPassword)
	if err != nil {
		return shared.NewUpstreamError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	o.PasswordHash = hash
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
	return nil
}

// IsLocked reports whether the account is currently locked. An expired
// lock counts as unlocked; the next successful login clears it.
func (o *Owner) IsLocked() bool {
	return o.LockedUntil != nil && time.Now().Before(*o.LockedUntil)
}

// RecordLoginFailure counts a failed attempt and locks the account once
// maxAttempts is reached. Returns true when this failure triggered the lock.
func (o *Owner) RecordLoginFailure(maxAttempts int, lockDuration time.Duration) bool {
	o.FailedAttempts++
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	if o.FailedAttempts >= maxAttempts {
		lockedUntil := time.Now().Add(lockDuration)
		o.LockedUntil = &lockedUntil
		return true
	}
	return false
}

// RecordLoginSuccess resets the failure counter and clears any lock
func (o *Owner) RecordLoginSuccess() {
	now := time.Now()
	o.LastLoginAt = &now
	o.FailedAttempts = 0
	o.LockedUntil = nil
	o.UpdatedAt = now
	o.IncrementVersion()
}

func validateUsername(username string) error {
	if username == "" {
		return shared.NewValidationError("INVALID_USERNAME", "Username cannot be empty")
	}
	if len(username) < 3 {
		return shared.NewValidationError("INVALID_USERNAME", "Username must be at least 3 characters")
	}
	if len(username) > 100 {
		return shared.NewValidationError("INVALID_USERNAME", "Username cannot exceed 100 characters")
	}
	if !usernamePattern.MatchString(username) {
		return shared.NewValidationError("INVALID_USERNAME", "Username can only contain letters, numbers, underscores, hyphens, and dots")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return shared.NewValidationError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	if len(password) > 128 {
		return shared.NewValidationError("INVALID_PASSWORD", "Password cannot exceed 128 characters")
	}

	hasLetter := regexp.MustCompile(`[a-zA-Z]`).MatchString(password)
	hasNumber := regexp.MustCompile(`[0-9]`).MatchString(password)
	if !hasLetter || !hasNumber {
		return shared.NewValidationError("INVALID_PASSWORD", "Password must contain at least one letter and one number")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
