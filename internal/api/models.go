package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/palette-api/internal/domain"
	"github.com/phrazzld/palette-api/internal/service"
)

// LoginRequest is the payload of POST /login.
type LoginRequest struct {
	Email      string `json:"email"       validate:"required,email,max=255"`
	SocialType string `json:"social_type" validate:"required,max=16"`
}

// LoginResponse is returned by POST /login. The refresh token travels in
// the PTOKEN_REFRESH cookie only.
type LoginResponse struct {
	UserID       uuid.UUID `json:"user_id"`
	AccessToken  string    `json:"access_token"`
	IsRegistered bool      `json:"is_registered"`
	SocialTypes  []string  `json:"social_types"`
}

// TokenResponse is returned by POST /token.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	SocialTypes    []string  `json:"social_types"`
	AgreeWithTerms bool      `json:"agree_with_terms"`
	CreatedAt      time.Time `json:"created_at"`
}

// CreateDiaryRequest is the payload of POST /diaries.
type CreateDiaryRequest struct {
	ColorID int64  `json:"color_id" validate:"required,gt=0"`
	Title   string `json:"title"    validate:"max=50"`
}

// CreateDiaryResponse is returned by POST /diaries.
type CreateDiaryResponse struct {
	DiaryID        uuid.UUID `json:"diary_id"`
	InvitationCode string    `json:"invitation_code"`
}

// InviteRequest is the payload of POST /diaries/invite.
type InviteRequest struct {
	InvitationCode string `json:"invitation_code" validate:"required,len=8,alpha"`
}

// InviteResponse is returned when a user joins a diary.
// AdminUser is null when the diary has no admin.
type InviteResponse struct {
	AdminUser *MemberUserResponse `json:"admin_user"`
	Diary     DiaryResponse       `json:"diary"`
}

// MemberUserResponse identifies another member of a diary.
type MemberUserResponse struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

// DiaryResponse is the public view of a diary.
type DiaryResponse struct {
	ID             uuid.UUID `json:"id"`
	Title          string    `json:"title"`
	InvitationCode string    `json:"invitation_code"`
	ColorID        int64     `json:"color_id"`
	CreatedAt      time.Time `json:"created_at"`
}

// MemberResponse is one membership row of a diary.
type MemberResponse struct {
	UserID  uuid.UUID `json:"user_id"`
	IsAdmin bool      `json:"is_admin"`
	IsOuted bool      `json:"is_outed"`
}

// DiaryViewResponse is a diary with its derived status, as listed by GET /diaries.
type DiaryViewResponse struct {
	DiaryResponse
	DiaryStatus    domain.DiaryStatus `json:"diary_status"`
	CurrentHistory *HistoryResponse   `json:"current_history"`
	Members        []MemberResponse   `json:"members"`
}

// DiaryStatusResponse is returned by GET /diaries/{id}/status.
type DiaryStatusResponse struct {
	DiaryID     uuid.UUID          `json:"diary_id"`
	DiaryStatus domain.DiaryStatus `json:"diary_status"`
}

// HistoryResponse is the public view of a history.
type HistoryResponse struct {
	ID        uuid.UUID  `json:"id"`
	DiaryID   uuid.UUID  `json:"diary_id"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   time.Time  `json:"ended_at"`
	ClosedAt  *time.Time `json:"closed_at,omitempty"`
}

// CreateHistoryRequest is the payload of POST /histories.
// A zero PeriodDays selects the default period.
type CreateHistoryRequest struct {
	DiaryID    string `json:"diary_id"    validate:"required,uuid"`
	PeriodDays int    `json:"period_days" validate:"min=0,max=30"`
}

// CreateHistoryResponse is returned by POST /histories.
type CreateHistoryResponse struct {
	HistoryID uuid.UUID `json:"history_id"`
}

// ColorResponse is one entry of the palette.
type ColorResponse struct {
	ID   int64  `json:"id"`
	Code string `json:"code"`
}

func socialTypeStrings(types []domain.SocialType) []string {
	out := make([]string, len(types))
	for i, st := range types {
		out[i] = string(st)
	}
	return out
}

func userToResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:             u.ID,
		Email:          u.Email,
		SocialTypes:    socialTypeStrings(u.SocialTypes),
		AgreeWithTerms: u.AgreeWithTerms,
		CreatedAt:      u.CreatedAt,
	}
}

func diaryToResponse(d *domain.Diary) DiaryResponse {
	return DiaryResponse{
		ID:             d.ID,
		Title:          d.Title,
		InvitationCode: d.InvitationCode,
		ColorID:        d.ColorID,
		CreatedAt:      d.CreatedAt,
	}
}

func historyToResponse(h *domain.History) *HistoryResponse {
	if h == nil {
		return nil
	}
	return &HistoryResponse{
		ID:        h.ID,
		DiaryID:   h.DiaryID,
		StartedAt: h.StartedAt,
		EndedAt:   h.EndedAt,
		ClosedAt:  h.ClosedAt,
	}
}

func diaryViewToResponse(v service.DiaryView) DiaryViewResponse {
	members := make([]MemberResponse, len(v.Members))
	for i, g := range v.Members {
		members[i] = MemberResponse{UserID: g.UserID, IsAdmin: g.IsAdmin, IsOuted: g.IsOuted}
	}
	return DiaryViewResponse{
		DiaryResponse:  diaryToResponse(&v.Diary),
		DiaryStatus:    v.Status,
		CurrentHistory: historyToResponse(v.CurrentHistory),
		Members:        members,
	}
}

func inviteToResponse(res *service.InviteResult) InviteResponse {
	resp := InviteResponse{Diary: diaryToResponse(res.Diary)}
	if res.Admin != nil {
		resp.AdminUser = &MemberUserResponse{ID: res.Admin.ID, Email: res.Admin.Email}
	}
	return resp
}
