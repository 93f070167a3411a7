package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/doorsets/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// AggregateTypeUser names the user aggregate
const AggregateTypeUser = "User"

// Role is a coarse permission level
type Role string

const (
	RoleAdmin Role = "admin"
	RoleStaff Role = "staff"
)

// IsValid checks if the role is known
func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleStaff
}

// BcryptCost is the work factor for password hashes
var BcryptCost = 12

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_\-.]+$`)
	hasLetter       = regexp.MustCompile(`[a-zA-Z]`)
	hasDigit        = regexp.MustCompile(`[0-9]`)
)

// User is an account that can sign in to the admin API
type User struct {
	shared.BaseAggregateRoot
	Username            string
	Email               string
	DisplayName         string
	PasswordHash        string
	Role                Role
	IsActive            bool
	FailedLoginAttempts int
	LockedUntil         *time.Time
	LastLoginAt         *time.Time
}

// NewUser creates an active user with a hashed password
func NewUser(username, email, displayName, password string, role Role) (*User, error) {
	username = strings.TrimSpace(username)
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if !role.IsValid() {
		return nil, shared.InvalidInputf("role must be one of admin, staff")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if err := shared.OptionalEmail("email", email); err != nil {
		return nil, err
	}
	if err := shared.MaxLength("displayName", displayName, 100); err != nil {
		return nil, err
	}
	u := &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Username:          username,
		Email:             email,
		DisplayName:       strings.TrimSpace(displayName),
		Role:              role,
		IsActive:          true,
	}
	if err := u.SetPassword(password); err != nil {
		return nil, err
	}
	return u, nil
}

// SetPassword validates and hashes a new password
func (u *User) SetPassword(password string) error {
	if err := validatePassword(password); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}
	u.PasswordHash = string(hash)
	if !u.IsNew() {
		u.IncrementVersion()
	}
	return nil
}

// ChangePassword replaces the password after checking the current one
func (u *User) ChangePassword(current, next string) error {
	if !u.VerifyPassword(current) {
		return shared.NewDomainError("INVALID_PASSWORD", "Current password is incorrect")
	}
	return u.SetPassword(next)
}

// VerifyPassword verifies if the provided password matches
func (u *User) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// IsLocked reports whether a lock is in force at now
func (u *User) IsLocked(now time.Time) bool {
	return u.LockedUntil != nil && now.Before(*u.LockedUntil)
}

// CanLogin reports whether the account may authenticate at now
func (u *User) CanLogin(now time.Time) bool {
	return u.IsActive && !u.IsLocked(now)
}

// RecordLoginSuccess resets failures and stamps the login time
func (u *User) RecordLoginSuccess(now time.Time) {
	u.LastLoginAt = &now
	u.FailedLoginAttempts = 0
	u.LockedUntil = nil
	u.IncrementVersion()
}

// RecordLoginFailure counts a failure and locks the account once maxAttempts
// is reached. It returns true when the account became locked.
func (u *User) RecordLoginFailure(now time.Time, maxAttempts int, lockFor time.Duration) bool {
	u.FailedLoginAttempts++
	u.IncrementVersion()
	if maxAttempts > 0 && u.FailedLoginAttempts >= maxAttempts {
		until := now.Add(lockFor)
		u.LockedUntil = &until
		u.FailedLoginAttempts = 0
		return true
	}
	return false
}

// Deactivate disables sign-in
func (u *User) Deactivate() {
	u.IsActive = false
	u.IncrementVersion()
}

// IsAdmin reports whether the user has the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// DisplayNameOrUsername returns display name if set, otherwise username
func (u *User) DisplayNameOrUsername() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}

func validateUsername(username string) error {
	if username == "" {
		return shared.InvalidInputf("username is required")
	}
	if len(username) < 3 || len(username) > 100 {
		return shared.InvalidInputf("username must be between 3 and 100 characters")
	}
	if !usernamePattern.MatchString(username) {
		return shared.InvalidInputf("username can only contain letters, numbers, underscores, hyphens, and dots")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return shared.InvalidInputf("password must be at least 8 characters")
	}
	if len(password) > 72 {
		return shared.InvalidInputf("password cannot exceed 72 characters")
	}
	if !hasLetter.MatchString(password) || !hasDigit.MatchString(password) {
		return shared.InvalidInputf("password must contain at least one letter and one number")
	}
	return nil
}
