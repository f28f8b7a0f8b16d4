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

type PairingHandler struct {
	matchmaker *service.Matchmaker
	directory  *service.SessionDirectory
	broker     *sse.Broker
}

func NewPairingHandler(
	matchmaker *service.Matchmaker,
	directory *service.SessionDirectory,
	broker *sse.Broker,
) *PairingHandler {
	return &PairingHandler{
		matchmaker: matchmaker,
		directory:  directory,
		broker:     broker,
	}
}

type joinRequest struct {
	UserID   userID `json:"userId"`
	Username string `json:"username"`
}

// Join puts the user into the matchmaking queue, pairing them
// immediately when someone is already waiting.
func (h *PairingHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn().Err(err).Msg("invalid join request")
		writeError(w, apperrors.ValidationError("Invalid request body"))
		return
	}
	if req.UserID.Blank() {
		writeError(w, apperrors.InvalidUserID(req.UserID.String()))
		return
	}
	if req.Username == "" {
		writeError(w, apperrors.MissingRequired("username"))
		return
	}

	result := h.matchmaker.Join(req.UserID.String(), req.Username)

	if !result.Paired {
		audit.UserQueued(r.Context(), req.UserID.String(), req.Username)

		if err := h.broker.PublishJSON(r.Context(), req.UserID.String(), sse.EventWaitingForPartner, map[string]string{
			"userId": req.UserID.String(),
		}); err != nil {
			log.Warn().Err(err).Msg("failed to publish waiting event")
		}

		writeJSON(w, http.StatusAccepted, map[string]any{
			"paired": false,
		})
		return
	}

	audit.UsersPaired(r.Context(), req.UserID.String(), result.PartnerID, result.Token)

	for _, side := range []struct {
		id, partnerID, partnerName string
	}{
		{req.UserID.String(), result.PartnerID, result.PartnerName},
		{result.PartnerID, req.UserID.String(), req.Username},
	} {
		if err := h.broker.PublishJSON(r.Context(), side.id, sse.EventPaired, map[string]string{
			"token":       result.Token,
			"partnerId":   side.partnerID,
			"partnerName": side.partnerName,
		}); err != nil {
			log.Warn().Err(err).Str("userId", side.id).Msg("failed to publish paired event")
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"paired":      true,
		"token":       result.Token,
		"partnerId":   result.PartnerID,
		"partnerName": result.PartnerName,
	})
}

type leaveRequest struct {
	UserID userID `json:"userId"`
}

// Leave removes a still-waiting user from the queue.
func (h *PairingHandler) Leave(w http.ResponseWriter, r *http.Request) {
	var req leaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("Invalid request body"))
		return
	}
	if req.UserID.Blank() {
		writeError(w, apperrors.InvalidUserID(req.UserID.String()))
		return
	}

	removed := h.matchmaker.Leave(req.UserID.String())
	writeJSON(w, http.StatusOK, map[string]any{"removed": removed})
}

// Partner reports the user's current partner, if any.
func (h *PairingHandler) Partner(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("userId")
	if id == "" {
		writeError(w, apperrors.MissingRequired("userId"))
		return
	}

	partnerID, ok := h.directory.PartnerOf(id)
	if !ok {
		writeError(w, apperrors.NotPaired(id))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"partnerId":   partnerID,
		"partnerName": h.directory.DisplayName(partnerID),
	})
}
