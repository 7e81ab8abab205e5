package api

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/palette-api/internal/api/shared"
	"github.com/phrazzld/palette-api/internal/domain"
	"github.com/phrazzld/palette-api/internal/platform/logger"
	"github.com/phrazzld/palette-api/internal/service"
)

// historyIDParam is the chi URL parameter holding a history ID.
const historyIDParam = "id"

// HistoryHandler starts and closes diary histories.
type HistoryHandler struct {
	diaries service.DiaryService
	logger  *slog.Logger
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(diaries service.DiaryService, log *slog.Logger) *HistoryHandler {
	if log == nil {
		log = slog.Default()
	}
	return &HistoryHandler{
		diaries: diaries,
		logger:  log.With("component", "history_handler"),
	}
}

// CreateHistory handles POST /histories.
func (h *HistoryHandler) CreateHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req CreateHistoryRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	diaryID, err := uuid.Parse(req.DiaryID)
	if err != nil {
		HandleAPIError(w, r, domain.NewValidationError("diary_id", "has invalid format", domain.ErrInvalidID), "")
		return
	}

	historyID, err := h.diaries.CreateHistory(r.Context(), diaryID, userID, req.PeriodDays)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to start history")
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Info("history started",
		"diary_id", diaryID,
		"history_id", historyID)

	shared.RespondWithJSON(w, r, http.StatusCreated, CreateHistoryResponse{HistoryID: historyID})
}

// CloseHistory handles POST /histories/{id}/close.
func (h *HistoryHandler) CloseHistory(w http.ResponseWriter, r *http.Request) {
	userID, historyID, ok := handleUserIDAndPathUUID(w, r, historyIDParam)
	if !ok {
		return
	}

	if err := h.diaries.CloseHistory(r.Context(), historyID, userID); err != nil {
		HandleAPIError(w, r, err, "Failed to close history")
		return
	}

	shared.RespondNoContent(w)
}
