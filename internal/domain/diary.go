package domain

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
)

// InvitationCodeLength is the number of characters in a diary invitation code.
const InvitationCodeLength = 8

const invitationCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// Diary-specific validation errors
var (
	ErrDiaryIDEmpty    = errors.New("diary ID cannot be empty")
	ErrDiaryColorEmpty = errors.New("diary color ID cannot be empty")
	ErrDiaryTitleLong  = errors.New("diary title must be at most 50 characters long")
)

// Color is a palette entry a diary can be decorated with.
type Color struct {
	ID   int64  `json:"id"`
	Code string `json:"code"`
}

// Diary is a shared journal between at most two users.
// Its invitation code is the only key used to join it and never changes.
type Diary struct {
	ID             uuid.UUID `json:"id"`
	Title          string    `json:"title"`
	InvitationCode string    `json:"invitation_code"`
	ColorID        int64     `json:"color_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewDiary creates a new Diary with a freshly generated invitation code.
func NewDiary(title string, colorID int64) (*Diary, error) {
	code, err := NewInvitationCode()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	diary := &Diary{
		ID:             uuid.New(),
		Title:          strings.TrimSpace(title),
		InvitationCode: code,
		ColorID:        colorID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := diary.Validate(); err != nil {
		return nil, err
	}

	return diary, nil
}

// Validate checks if the Diary has valid data.
func (d *Diary) Validate() error {
	if d.ID == uuid.Nil {
		return ErrDiaryIDEmpty
	}
	if d.ColorID == 0 {
		return ErrDiaryColorEmpty
	}
	if len([]rune(d.Title)) > 50 {
		return ErrDiaryTitleLong
	}
	if !IsValidInvitationCode(d.InvitationCode) {
		return ErrInvalidInvitationCode
	}
	return nil
}

// RegenerateInvitationCode replaces the code of a diary that has not been
// persisted yet. It is used when the store reports a code collision.
func (d *Diary) RegenerateInvitationCode() error {
	code, err := NewInvitationCode()
	if err != nil {
		return err
	}
	d.InvitationCode = code
	return nil
}

// NewInvitationCode returns a cryptographically random, unbiased string of
// InvitationCodeLength ASCII letters.
func NewInvitationCode() (string, error) {
	limit := big.NewInt(int64(len(invitationCodeAlphabet)))
	code := make([]byte, InvitationCodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		code[i] = invitationCodeAlphabet[n.Int64()]
	}
	return string(code), nil
}

// IsValidInvitationCode reports whether s has the invitation code shape.
func IsValidInvitationCode(s string) bool {
	if len(s) != InvitationCodeLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < 'A' || c > 'Z') && (c < 'a' || c > 'z') {
			return false
		}
	}
	return true
}

// DiaryGroup is the membership of one user in one diary.
// IsAdmin is only set for the founder. IsOuted marks a member who left.
type DiaryGroup struct {
	ID        uuid.UUID `json:"id"`
	DiaryID   uuid.UUID `json:"diary_id"`
	UserID    uuid.UUID `json:"user_id"`
	IsAdmin   bool      `json:"is_admin"`
	IsOuted   bool      `json:"is_outed"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewDiaryGroup creates an active membership row.
func NewDiaryGroup(diaryID, userID uuid.UUID, isAdmin bool) *DiaryGroup {
	now := time.Now().UTC()
	return &DiaryGroup{
		ID:        uuid.New(),
		DiaryID:   diaryID,
		UserID:    userID,
		IsAdmin:   isAdmin,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
