package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/palette-api/internal/domain"
	"github.com/phrazzld/palette-api/internal/service"
	"github.com/phrazzld/palette-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestHistoryHandler_CreateHistory(t *testing.T) {
	userID := uuid.New()
	diaryID := uuid.New()
	historyID := uuid.New()

	tests := []struct {
		name       string
		body       string
		period     int
		createErr  error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "default period",
			body:       `{"diary_id":"` + diaryID.String() + `"}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "explicit period",
			body:       `{"diary_id":"` + diaryID.String() + `","period_days":30}`,
			period:     30,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "history in progress",
			body:       `{"diary_id":"` + diaryID.String() + `"}`,
			createErr:  domain.ErrHistoryInProgress,
			wantStatus: http.StatusConflict,
			wantCode:   "H001",
		},
		{
			name:       "not a member",
			body:       `{"diary_id":"` + diaryID.String() + `"}`,
			createErr:  service.ErrNotDiaryMember,
			wantStatus: http.StatusForbidden,
			wantCode:   "D006",
		},
		{
			name:       "member left the diary",
			body:       `{"diary_id":"` + diaryID.String() + `"}`,
			createErr:  domain.ErrMemberOuted,
			wantStatus: http.StatusConflict,
			wantCode:   "D005",
		},
		{
			name:       "period too long",
			body:       `{"diary_id":"` + diaryID.String() + `","period_days":31}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "V001",
		},
		{
			name:       "negative period",
			body:       `{"diary_id":"` + diaryID.String() + `","period_days":-1}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "V001",
		},
		{
			name:       "bad diary id",
			body:       `{"diary_id":"not-a-uuid"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "V001",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			diaries := new(mockDiaryService)
			if tc.wantStatus != http.StatusBadRequest {
				diaries.On("CreateHistory", mock.Anything, diaryID, userID, tc.period).Return(historyID, tc.createErr)
			}
			h := NewHistoryHandler(diaries, nil)

			rr := httptest.NewRecorder()
			h.CreateHistory(rr, newRequest(http.MethodPost, "/api/v1/histories", tc.body, userID, nil))

			assert.Equal(t, tc.wantStatus, rr.Code)
			if tc.wantCode != "" {
				assert.Equal(t, tc.wantCode, decodeError(t, rr).Code)
			} else {
				assert.JSONEq(t, `{"history_id":"`+historyID.String()+`"}`, rr.Body.String())
			}
			diaries.AssertExpectations(t)
		})
	}
}

func TestHistoryHandler_CloseHistory(t *testing.T) {
	userID := uuid.New()
	historyID := uuid.New()
	params := map[string]string{"id": historyID.String()}

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{name: "closed", wantStatus: http.StatusNoContent},
		{name: "not found", err: store.ErrHistoryNotFound, wantStatus: http.StatusNotFound, wantCode: "H002"},
		{name: "outed member", err: domain.ErrMemberOuted, wantStatus: http.StatusConflict, wantCode: "D005"},
		{name: "stranger", err: service.ErrNotDiaryMember, wantStatus: http.StatusForbidden, wantCode: "D006"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			diaries := new(mockDiaryService)
			diaries.On("CloseHistory", mock.Anything, historyID, userID).Return(tc.err)
			h := NewHistoryHandler(diaries, nil)

			rr := httptest.NewRecorder()
			h.CloseHistory(rr, newRequest(http.MethodPost, "/", "", userID, params))

			assert.Equal(t, tc.wantStatus, rr.Code)
			if tc.wantCode != "" {
				assert.Equal(t, tc.wantCode, decodeError(t, rr).Code)
			}
		})
	}
}
