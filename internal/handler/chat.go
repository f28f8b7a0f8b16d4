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

type ChatHandler struct {
	chat       *service.ChatService
	directory  *service.SessionDirectory
	translator *service.TranslationService
	broker     *sse.Broker
}

func NewChatHandler(
	chat *service.ChatService,
	directory *service.SessionDirectory,
	translator *service.TranslationService,
	broker *sse.Broker,
) *ChatHandler {
	return &ChatHandler{
		chat:       chat,
		directory:  directory,
		translator: translator,
		broker:     broker,
	}
}

type messageRequest struct {
	UserID  userID `json:"userId"`
	Message string `json:"message"`
}

// Message delivers one chat message: scores it, logs it on both
// timelines and pushes it to the partner's stream with translations.
func (h *ChatHandler) Message(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn().Err(err).Msg("invalid message request")
		writeError(w, apperrors.ValidationError("Invalid request body"))
		return
	}
	if req.UserID.Blank() {
		writeError(w, apperrors.InvalidUserID(req.UserID.String()))
		return
	}
	if req.Message == "" {
		writeError(w, apperrors.MissingRequired("message"))
		return
	}

	result, err := h.chat.HandleMessage(r.Context(), req.UserID.String(), req.Message)
	if err != nil {
		writeError(w, err)
		return
	}

	if partnerID, ok := h.directory.PartnerOf(req.UserID.String()); ok {
		payload := map[string]any{
			"from":         req.UserID.String(),
			"fromName":     h.directory.DisplayName(req.UserID.String()),
			"message":      req.Message,
			"translations": result.Translations,
		}
		if err := h.broker.PublishJSON(r.Context(), partnerID, sse.EventMessage, payload); err != nil {
			log.Warn().Err(err).Str("partnerId", partnerID).Msg("failed to publish message event")
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"sentiment":    result.Sentiment,
		"predicted":    result.Sentiment.Predicted(),
		"translations": result.Translations,
	})
}

type typingRequest struct {
	UserID  userID `json:"userId"`
	Partial string `json:"partial"`
}

// Typing forwards a draft update to the partner and, when the draft is
// long enough to score, runs it through sentiment analysis. A newly
// negative draft pushes an alert back to the author.
func (h *ChatHandler) Typing(w http.ResponseWriter, r *http.Request) {
	var req typingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("Invalid request body"))
		return
	}
	if req.UserID.Blank() {
		writeError(w, apperrors.InvalidUserID(req.UserID.String()))
		return
	}

	result, err := h.chat.HandleTyping(r.Context(), req.UserID.String(), req.Partial)
	if err != nil {
		writeError(w, err)
		return
	}

	if partnerID, ok := h.directory.PartnerOf(req.UserID.String()); ok {
		if err := h.broker.PublishJSON(r.Context(), partnerID, sse.EventTyping, map[string]string{
			"from": req.UserID.String(),
		}); err != nil {
			log.Warn().Err(err).Str("partnerId", partnerID).Msg("failed to publish typing event")
		}
	}

	if result.Alert {
		if err := h.broker.PublishJSON(r.Context(), req.UserID.String(), sse.EventAlert, map[string]any{
			"reason":   "negative_draft",
			"warnings": result.Warnings,
		}); err != nil {
			log.Warn().Err(err).Msg("failed to publish alert event")
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"analyzed":    result.Analyzed,
		"alert":       result.Alert,
		"warnings":    result.Warnings,
		"corrections": result.Corrections,
	})
}

type languageRequest struct {
	UserID   userID `json:"userId"`
	Language string `json:"language"`
}

// Language sets the user's preferred translation language. Unsupported
// codes clear the preference.
func (h *ChatHandler) Language(w http.ResponseWriter, r *http.Request) {
	var req languageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("Invalid request body"))
		return
	}
	if req.UserID.Blank() {
		writeError(w, apperrors.InvalidUserID(req.UserID.String()))
		return
	}

	accepted := h.translator.SetLanguage(req.UserID.String(), req.Language)
	if !accepted {
		writeError(w, apperrors.InvalidInput("language", "unsupported language code"))
		return
	}

	audit.LanguageChanged(r.Context(), req.UserID.String(), req.Language)

	writeJSON(w, http.StatusOK, map[string]string{
		"language": h.translator.Language(req.UserID.String()),
	})
}
