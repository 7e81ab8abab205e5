package domain

import (
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Common validation errors
var (
	ErrEmptyUserID = errors.New("user ID cannot be empty")
	ErrEmptyEmail  = errors.New("email cannot be empty")
)

// SocialType identifies the social login provider a user signed in with.
type SocialType string

const (
	SocialTypeKakao  SocialType = "KAKAO"
	SocialTypeApple  SocialType = "APPLE"
	SocialTypeGoogle SocialType = "GOOGLE"
)

// ParseSocialType converts a client-supplied provider name into a SocialType.
// Matching is case-insensitive.
func ParseSocialType(s string) (SocialType, error) {
	switch st := SocialType(strings.ToUpper(strings.TrimSpace(s))); st {
	case SocialTypeKakao, SocialTypeApple, SocialTypeGoogle:
		return st, nil
	default:
		return "", ErrInvalidSocialType
	}
}

// User represents a person who signed in through a social provider.
// Users are never hard-deleted; account deletion sets IsDeleted.
type User struct {
	ID             uuid.UUID    `json:"id"`
	Email          string       `json:"email"`
	SocialTypes    []SocialType `json:"social_types"`
	AgreeWithTerms bool         `json:"agree_with_terms"`
	IsDeleted      bool         `json:"-"`
	DeletedAt      *time.Time   `json:"-"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// NewUser creates a new User for the first login with the given provider.
// Returns an error if validation fails.
func NewUser(email string, socialType SocialType) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:          uuid.New(),
		Email:       strings.TrimSpace(email),
		SocialTypes: []SocialType{socialType},
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

	if !validateEmailFormat(u.Email) {
		return ErrInvalidEmail
	}

	for _, st := range u.SocialTypes {
		if _, err := ParseSocialType(string(st)); err != nil {
			return err
		}
	}

	return nil
}

// HasSocialType reports whether the user has signed in with the given provider.
func (u *User) HasSocialType(st SocialType) bool {
	return slices.Contains(u.SocialTypes, st)
}

// validateEmailFormat performs basic validation of email format:
// a non-empty local part, an '@', and a domain containing an inner dot.
// Request payloads are additionally checked with the validator "email" tag.
func validateEmailFormat(email string) bool {
	local, domainPart, ok := strings.Cut(email, "@")
	if !ok || local == "" || len(domainPart) < 3 {
		return false
	}

	dot := strings.Index(domainPart, ".")
	return dot > 0 && dot < len(domainPart)-1
}
