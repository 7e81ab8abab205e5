package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/palette-api/internal/api/shared"
	"github.com/phrazzld/palette-api/internal/platform/logger"
	"github.com/phrazzld/palette-api/internal/service"
)

// diaryIDParam is the chi URL parameter holding a diary ID.
const diaryIDParam = "id"

// DiaryHandler serves diaries, their membership and their status.
type DiaryHandler struct {
	diaries service.DiaryService
	logger  *slog.Logger
}

// NewDiaryHandler creates a new DiaryHandler.
func NewDiaryHandler(diaries service.DiaryService, log *slog.Logger) *DiaryHandler {
	if log == nil {
		log = slog.Default()
	}
	return &DiaryHandler{
		diaries: diaries,
		logger:  log.With("component", "diary_handler"),
	}
}

// CreateDiary handles POST /diaries.
func (h *DiaryHandler) CreateDiary(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req CreateDiaryRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	diary, err := h.diaries.CreateDiary(r.Context(), req.ColorID, req.Title, userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create diary")
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Info("diary created",
		"diary_id", diary.ID,
		"user_id", userID)

	shared.RespondWithJSON(w, r, http.StatusCreated, CreateDiaryResponse{
		DiaryID:        diary.ID,
		InvitationCode: diary.InvitationCode,
	})
}

// ListDiaries handles GET /diaries.
func (h *DiaryHandler) ListDiaries(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	views, err := h.diaries.ListDiaries(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list diaries")
		return
	}

	resp := make([]DiaryViewResponse, len(views))
	for i, v := range views {
		resp[i] = diaryViewToResponse(v)
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// Invite handles POST /diaries/invite, adding the caller to the diary
// that owns the invitation code.
func (h *DiaryHandler) Invite(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req InviteRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.diaries.Invite(r.Context(), req.InvitationCode, userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to join diary")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, inviteToResponse(result))
}

// Status handles GET /diaries/{id}/status.
func (h *DiaryHandler) Status(w http.ResponseWriter, r *http.Request) {
	userID, diaryID, ok := handleUserIDAndPathUUID(w, r, diaryIDParam)
	if !ok {
		return
	}

	if err := h.diaries.Authorize(r.Context(), diaryID, userID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	status, err := h.diaries.DiaryStatus(r.Context(), diaryID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get diary status")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, DiaryStatusResponse{
		DiaryID:     diaryID,
		DiaryStatus: status,
	})
}

// CurrentHistory handles GET /diaries/{id}/history.
// It responds 204 when no history is in progress.
func (h *DiaryHandler) CurrentHistory(w http.ResponseWriter, r *http.Request) {
	userID, diaryID, ok := handleUserIDAndPathUUID(w, r, diaryIDParam)
	if !ok {
		return
	}

	if err := h.diaries.Authorize(r.Context(), diaryID, userID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	history, err := h.diaries.CurrentHistory(r.Context(), diaryID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get current history")
		return
	}
	if history == nil {
		shared.RespondNoContent(w)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, historyToResponse(history))
}

// Leave handles POST /diaries/{id}/leave.
func (h *DiaryHandler) Leave(w http.ResponseWriter, r *http.Request) {
	userID, diaryID, ok := handleUserIDAndPathUUID(w, r, diaryIDParam)
	if !ok {
		return
	}

	if err := h.diaries.LeaveDiary(r.Context(), diaryID, userID); err != nil {
		HandleAPIError(w, r, err, "Failed to leave diary")
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Info("user left diary",
		"diary_id", diaryID,
		"user_id", userID)

	shared.RespondNoContent(w)
}

// ListColors handles GET /colors.
func (h *DiaryHandler) ListColors(w http.ResponseWriter, r *http.Request) {
	colors, err := h.diaries.ListColors(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list colors")
		return
	}

	resp := make([]ColorResponse, len(colors))
	for i, c := range colors {
		resp[i] = ColorResponse{ID: c.ID, Code: c.Code}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}
