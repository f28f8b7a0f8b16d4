package handler

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/dyadlab/chat-logger-go/internal/audit"
	apperrors "github.com/dyadlab/chat-logger-go/internal/errors"
	"github.com/dyadlab/chat-logger-go/internal/service"
	"github.com/dyadlab/chat-logger-go/internal/sse"
)

// SessionHandler terminates recording sessions and flushes timelines
// to the export sink.
type SessionHandler struct {
	coordinator *service.ExportCoordinator
	directory   *service.SessionDirectory
	broker      *sse.Broker
}

func NewSessionHandler(
	coordinator *service.ExportCoordinator,
	directory *service.SessionDirectory,
	broker *sse.Broker,
) *SessionHandler {
	return &SessionHandler{
		coordinator: coordinator,
		directory:   directory,
		broker:      broker,
	}
}

type stopRequest struct {
	UserID userID `json:"userId"`
}

// Stop ends the user's recording session. The first stop on a pairing
// writes the export artifacts; a repeat stop from either side is
// acknowledged without writing anything again.
func (h *SessionHandler) Stop(w http.ResponseWriter, r *http.Request) {
	var req stopRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("Invalid request body"))
		return
	}
	if req.UserID.Blank() {
		writeError(w, apperrors.InvalidUserID(req.UserID.String()))
		return
	}

	id := req.UserID.String()

	artifacts, err := h.coordinator.ExportOnce(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	audit.SessionStopped(r.Context(), id, len(artifacts) > 0)
	if len(artifacts) == 0 {
		audit.ExportSkipped(r.Context(), id, h.directory.PairingKey(id))
	} else {
		audit.ExportWritten(r.Context(), id, artifacts)
	}

	targets := []string{id}
	if partnerID, ok := h.directory.PartnerOf(id); ok {
		targets = append(targets, partnerID)
	}
	for _, target := range targets {
		if err := h.broker.PublishJSON(r.Context(), target, sse.EventRecordingStopped, map[string]any{
			"stoppedBy": id,
			"saved":     len(artifacts) > 0,
		}); err != nil {
			log.Warn().Err(err).Str("userId", target).Msg("failed to publish recording stopped event")
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"saved":     len(artifacts) > 0,
		"artifacts": artifacts,
	})
}
