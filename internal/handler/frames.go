package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	apperrors "github.com/dyadlab/chat-logger-go/internal/errors"
	"github.com/dyadlab/chat-logger-go/internal/model"
	"github.com/dyadlab/chat-logger-go/internal/service"
)

// EmotionOracle scores a captured camera frame.
type EmotionOracle interface {
	AnalyzeFrame(ctx context.Context, frame []byte) (model.EmotionVector, error)
}

// FramesHandler ingests camera frames, throttles them per user and
// turns accepted frames into emotion rows on the timeline.
type FramesHandler struct {
	mirror   *service.MirrorLog
	chat     *service.ChatService
	throttle *service.FrameThrottle
	emotion  EmotionOracle
}

func NewFramesHandler(
	mirror *service.MirrorLog,
	chat *service.ChatService,
	throttle *service.FrameThrottle,
	emotion EmotionOracle,
) *FramesHandler {
	return &FramesHandler{
		mirror:   mirror,
		chat:     chat,
		throttle: throttle,
		emotion:  emotion,
	}
}

type frameRequest struct {
	UserID userID `json:"userId"`
	Frame  string `json:"frame"`
}

// Ingest accepts one base64 frame. Frames arriving faster than the
// configured interval are dropped; analysis failures are logged but do
// not fail the request.
func (h *FramesHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var req frameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("Invalid request body"))
		return
	}
	if req.UserID.Blank() {
		writeError(w, apperrors.InvalidUserID(req.UserID.String()))
		return
	}
	if req.Frame == "" {
		writeError(w, apperrors.MissingRequired("frame"))
		return
	}

	id := req.UserID.String()

	if !h.throttle.Allow(id) {
		writeJSON(w, http.StatusOK, map[string]any{"processed": false, "reason": "throttled"})
		return
	}

	frame, err := decodeFrame(req.Frame)
	if err != nil {
		writeError(w, apperrors.InvalidInput("frame", "not valid base64"))
		return
	}

	emotions, err := h.emotion.AnalyzeFrame(r.Context(), frame)
	if err != nil {
		log.Warn().Err(err).Str("userId", id).Msg("emotion analysis failed, recording empty scores")
		emotions = model.EmotionVector{}
	}

	fields := model.EventFields{Message: h.chat.CurrentMessage(id)}
	fields.WarningCount, fields.CorrectionCount = h.chat.WarningState(id)

	if err := h.mirror.RecordEvent(id, model.StatusSender, model.EventEmotionSample, emotions, nil, fields); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"processed": true,
		"emotions":  emotions,
	})
}

// decodeFrame strips an optional data URL prefix before decoding.
func decodeFrame(raw string) ([]byte, error) {
	if idx := strings.Index(raw, ","); idx >= 0 && strings.HasPrefix(raw, "data:") {
		raw = raw[idx+1:]
	}
	return base64.StdEncoding.DecodeString(raw)
}
