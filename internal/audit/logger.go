package audit

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type EventType string

const (
	EventUserQueued      EventType = "user_queued"
	EventUsersPaired     EventType = "users_paired"
	EventSessionStopped  EventType = "session_stopped"
	EventExportWritten   EventType = "export_written"
	EventExportSkipped   EventType = "export_skipped"
	EventLanguageChanged EventType = "language_changed"
)

type Event struct {
	Type      EventType
	UserID    string
	PartnerID string
	Details   map[string]interface{}
}

func Log(ctx context.Context, event Event) {
	logger := log.With().
		Str("audit", "session").
		Str("event_type", string(event.Type)).
		Time("timestamp", time.Now()).
		Logger()

	if event.UserID != "" {
		logger = logger.With().Str("user_id", event.UserID).Logger()
	}
	if event.PartnerID != "" {
		logger = logger.With().Str("partner_id", event.PartnerID).Logger()
	}

	logEvent := logger.Info()
	for k, v := range event.Details {
		logEvent = addField(logEvent, k, v)
	}
	logEvent.Msg("session audit event")
}

func addField(e *zerolog.Event, key string, value interface{}) *zerolog.Event {
	switch v := value.(type) {
	case string:
		return e.Str(key, v)
	case int:
		return e.Int(key, v)
	case int64:
		return e.Int64(key, v)
	case bool:
		return e.Bool(key, v)
	case []string:
		return e.Strs(key, v)
	default:
		return e.Interface(key, v)
	}
}

func UserQueued(ctx context.Context, userID, username string) {
	Log(ctx, Event{
		Type:    EventUserQueued,
		UserID:  userID,
		Details: map[string]interface{}{"username": username},
	})
}

func UsersPaired(ctx context.Context, userID, partnerID, token string) {
	Log(ctx, Event{
		Type:      EventUsersPaired,
		UserID:    userID,
		PartnerID: partnerID,
		Details:   map[string]interface{}{"token": token},
	})
}

func SessionStopped(ctx context.Context, userID string, saved bool) {
	Log(ctx, Event{
		Type:    EventSessionStopped,
		UserID:  userID,
		Details: map[string]interface{}{"saved": saved},
	})
}

func ExportWritten(ctx context.Context, userID string, artifacts []string) {
	Log(ctx, Event{
		Type:    EventExportWritten,
		UserID:  userID,
		Details: map[string]interface{}{"artifacts": artifacts},
	})
}

func ExportSkipped(ctx context.Context, userID, pairingKey string) {
	Log(ctx, Event{
		Type:    EventExportSkipped,
		UserID:  userID,
		Details: map[string]interface{}{"pairing_key": pairingKey},
	})
}

func LanguageChanged(ctx context.Context, userID, lang string) {
	Log(ctx, Event{
		Type:    EventLanguageChanged,
		UserID:  userID,
		Details: map[string]interface{}{"language": lang},
	})
}
