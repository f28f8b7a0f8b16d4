package handler

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	apperrors "github.com/dyadlab/chat-logger-go/internal/errors"
	"github.com/dyadlab/chat-logger-go/internal/model"
	"github.com/dyadlab/chat-logger-go/internal/service"
)

// EventsHandler records message lifecycle markers: when composition
// and viewing intervals open and close on each side of the pair.
type EventsHandler struct {
	mirror *service.MirrorLog
}

func NewEventsHandler(mirror *service.MirrorLog) *EventsHandler {
	return &EventsHandler{mirror: mirror}
}

type lifecycleRequest struct {
	UserID userID `json:"userId"`

	Message         string `json:"message"`
	CompleteMessage string `json:"completeMessage"`

	StartSendingTime string `json:"startSendingTime"`
	EndSendingTime   string `json:"endSendingTime"`
	TotalSendingTime string `json:"totalSendingTime"`
	StartViewingTime string `json:"startViewingTime"`
	EndViewingTime   string `json:"endViewingTime"`
	TotalViewingTime string `json:"totalViewingTime"`
}

func (req *lifecycleRequest) fields() model.EventFields {
	return model.EventFields{
		Message:          req.Message,
		CompleteMessage:  req.CompleteMessage,
		StartSendingTime: req.StartSendingTime,
		EndSendingTime:   req.EndSendingTime,
		TotalSendingTime: req.TotalSendingTime,
		StartViewingTime: req.StartViewingTime,
		EndViewingTime:   req.EndViewingTime,
		TotalViewingTime: req.TotalViewingTime,
	}
}

func (h *EventsHandler) StartSending(w http.ResponseWriter, r *http.Request) {
	h.record(w, r, model.StatusSender, model.EventStartSending)
}

func (h *EventsHandler) EndSending(w http.ResponseWriter, r *http.Request) {
	h.record(w, r, model.StatusSender, model.EventEndSending)
}

func (h *EventsHandler) CancelSending(w http.ResponseWriter, r *http.Request) {
	h.record(w, r, model.StatusSender, model.EventCancelSending)
}

func (h *EventsHandler) StartViewing(w http.ResponseWriter, r *http.Request) {
	h.record(w, r, model.StatusReceiver, model.EventStartViewing)
}

func (h *EventsHandler) EndViewing(w http.ResponseWriter, r *http.Request) {
	h.record(w, r, model.StatusReceiver, model.EventEndViewing)
}

func (h *EventsHandler) record(w http.ResponseWriter, r *http.Request, status model.Status, eventType model.EventType) {
	var req lifecycleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn().Err(err).Str("eventType", string(eventType)).Msg("invalid lifecycle event request")
		writeError(w, apperrors.ValidationError("Invalid request body"))
		return
	}
	if req.UserID.Blank() {
		writeError(w, apperrors.InvalidUserID(req.UserID.String()))
		return
	}

	err := h.mirror.RecordEvent(
		req.UserID.String(),
		status,
		eventType,
		model.EmotionVector{},
		nil,
		req.fields(),
	)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "recorded"})
}
