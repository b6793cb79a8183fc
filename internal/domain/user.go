package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Common user validation errors
var (
	ErrEmptyUserID         = errors.New("user ID cannot be empty")
	ErrEmptyEmail          = errors.New("email cannot be empty")
	ErrInvalidEmail        = errors.New("invalid email format")
	ErrEmptyPassword       = errors.New("password cannot be empty")
	ErrPasswordTooShort    = errors.New("password must be at least 12 characters long")
	ErrPasswordTooLong     = errors.New("password must be at most 72 characters long")
	ErrEmptyHashedPassword = errors.New("hashed password cannot be empty")
)

// User represents a registered user. Gamification state (level,
// experience points, completion count) lives directly on the user record.
type User struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	Password       string    `json:"-"` // Plaintext, only set during registration/updates
	HashedPassword string    `json:"-"` // Never expose the hash in JSON
	Name           string    `json:"name"`
	Level          int       `json:"level"`
	XP             int       `json:"xp"`
	TasksCompleted int       `json:"tasks_completed"`
	Timezone       string    `json:"timezone"`
	DailyXPGoal    int       `json:"daily_xp_goal"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewUser creates a level-1 user with the given email, password, and
// display name. The caller is responsible for hashing the password
// before the user is stored.
func NewUser(email, password, name string) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:          uuid.New(),
		Email:       email,
		Password:    password,
		Name:        name,
		Level:       1,
		Timezone:    "UTC",
		DailyXPGoal: 50,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrEmptyUserID
	}
	if u.Email == "" {
		return ErrEmptyEmail
	}
	if !validEmailFormat(u.Email) {
		return ErrInvalidEmail
	}

	if u.Password != "" {
		if len(u.Password) < 12 {
			return ErrPasswordTooShort
		}
		if len(u.Password) > 72 {
			return ErrPasswordTooLong
		}
	} else if u.HashedPassword == "" {
		// Existing users must at least carry a hash.
		return ErrEmptyPassword
	}

	return nil
}

// xpForLevel returns the cumulative experience required to reach the
// given level. Level 1 requires nothing; each level costs 100 more XP
// than the one before it.
func xpForLevel(level int) int {
	if level <= 1 {
		return 0
	}
	return 50 * level * (level - 1)
}

// AwardXP adds points to the user's experience total, increments the
// completion counter, and applies any level-ups. Returns the number of
// levels gained.
func (u *User) AwardXP(points int) int {
	if points < 0 {
		points = 0
	}
	u.XP += points
	u.TasksCompleted++

	gained := 0
	for u.XP >= xpForLevel(u.Level+1) {
		u.Level++
		gained++
	}
	u.UpdatedAt = time.Now().UTC()
	return gained
}

// validEmailFormat performs a minimal structural check: one @ with a
// dotted domain after it.
func validEmailFormat(email string) bool {
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}
	domain := email[at+1:]
	dot := strings.Index(domain, ".")
	return dot > 0 && dot < len(domain)-1
}
