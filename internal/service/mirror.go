package service

import (
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	apperrors "github.com/dyadlab/chat-logger-go/internal/errors"
	"github.com/dyadlab/chat-logger-go/internal/model"
)

// SentimentSource provides the last known sentiment for a user. Absence
// is a typed miss, not a runtime attribute probe.
type SentimentSource interface {
	GetSentiment(userID string) (model.SentimentVector, bool)
}

// MirrorLog is the central event-logging entry point. One incoming
// event for one user produces the user's own row plus, when a partner
// exists, a mirrored row on the partner's timeline with directional
// fields inverted.
type MirrorLog struct {
	directory *SessionDirectory
	guard     *ActivityGuard
	timelines *TimelineStore
	sentiment SentimentSource

	lockMu sync.Mutex
	locks  map[string]*sync.Mutex
}

func NewMirrorLog(
	directory *SessionDirectory,
	guard *ActivityGuard,
	timelines *TimelineStore,
	sentiment SentimentSource,
) *MirrorLog {
	return &MirrorLog{
		directory: directory,
		guard:     guard,
		timelines: timelines,
		sentiment: sentiment,
		locks:     make(map[string]*sync.Mutex),
	}
}

// RecordEvent appends one row to the user's timeline and, when paired,
// one mirrored row to the partner's. Missing affect data is treated as
// all-zero; logging is never blocked by inference failures. Only a
// malformed user id fails the call.
func (m *MirrorLog) RecordEvent(
	userID string,
	status model.Status,
	eventType model.EventType,
	emotions model.EmotionVector,
	sentiment *model.SentimentVector,
	fields model.EventFields,
) error {
	if strings.TrimSpace(userID) == "" {
		return apperrors.InvalidUserID(userID)
	}

	partnerID, hasPartner := m.directory.PartnerOf(userID)

	unlock := m.lockUsers(userID, partnerID)
	defer unlock()

	own := model.TimelineRow{
		UserID:   userID,
		Username: m.directory.DisplayName(userID),
		Own:      m.buildOwnSide(userID, status, eventType, emotions, sentiment, &fields),
	}

	if hasPartner {
		own.PartnerName = m.directory.DisplayName(partnerID)
		own.Partner = m.buildPartnerBlock(partnerID, status, eventType, &fields)
	}

	m.timelines.Get(userID).Append(own)

	if hasPartner {
		mirror := m.buildMirrorRow(userID, partnerID, status, eventType, emotions, sentiment, &fields)
		m.timelines.Get(partnerID).Append(mirror)
	}

	log.Debug().
		Str("userId", userID).
		Str("eventType", string(eventType)).
		Bool("mirrored", hasPartner).
		Msg("event recorded")

	return nil
}

// buildOwnSide assembles the acting user's half of their row: receiver
// rows carry no message text in the primary fields, guard suppression
// drops conflicting start timestamps, and cached sentiment fills in
// when none was passed explicitly.
func (m *MirrorLog) buildOwnSide(
	userID string,
	status model.Status,
	eventType model.EventType,
	emotions model.EmotionVector,
	sentiment *model.SentimentVector,
	fields *model.EventFields,
) model.RowSide {
	side := model.RowSide{
		Status:          status,
		EventType:       eventType,
		ActionBy:        userID,
		WarningCount:    fields.WarningCount,
		CorrectionCount: fields.CorrectionCount,
		Emotions:        emotions,
	}

	// A receiver's row must not carry the sender's text in the primary
	// fields; that text belongs only in the partner block.
	if status != model.StatusReceiver {
		side.Message = fields.Message
		side.CompleteMessage = fields.CompleteMessage
	}

	fields.CopyTimesTo(&side)
	m.applyGuard(userID, eventType, fields, &side)

	if sentiment != nil {
		side.Sentiment = *sentiment
	} else if cached, ok := m.sentiment.GetSentiment(userID); ok {
		side.Sentiment = cached
	}

	return side
}

// applyGuard enforces the idempotent start/end rules on the acting
// user's own row. Duplicate starts keep the row but lose the timestamp
// that would conflict with the already-open interval; ends and cancels
// always clear the flag.
func (m *MirrorLog) applyGuard(userID string, eventType model.EventType, fields *model.EventFields, side *model.RowSide) {
	if fields.StartSendingTime != "" && m.guard.OnSendStart(userID) {
		side.StartSendingTime = ""
	}
	if fields.StartViewingTime != "" && m.guard.OnViewStart(userID) {
		side.StartViewingTime = ""
	}
	if fields.EndSendingTime != "" || eventType == model.EventEndSending || eventType == model.EventCancelSending {
		m.guard.OnSendEnd(userID)
	}
	if fields.EndViewingTime != "" || eventType == model.EventEndViewing {
		m.guard.OnViewEnd(userID)
	}
}

// buildPartnerBlock is the denormalized partner snapshot attached to
// the acting user's own row: status inverted, shared wall-clock markers
// copied verbatim, and the partner's last known sentiment merged in.
func (m *MirrorLog) buildPartnerBlock(
	partnerID string,
	status model.Status,
	eventType model.EventType,
	fields *model.EventFields,
) *model.RowSide {
	block := &model.RowSide{
		Status:          status.Invert(),
		EventType:       eventType,
		ActionBy:        partnerID,
		Message:         fields.PartnerMessage,
		CompleteMessage: fields.PartnerCompleteMessage,
		WarningCount:    fields.PartnerWarningCount,
		CorrectionCount: fields.PartnerCorrectionCount,
	}

	// When the acting user is the receiver the partner authored the
	// text, so the user's message fields describe the partner.
	if status == model.StatusReceiver {
		if block.Message == "" {
			block.Message = fields.Message
		}
		if block.CompleteMessage == "" {
			block.CompleteMessage = fields.CompleteMessage
		}
	}

	fields.CopyTimesTo(block)

	if cached, ok := m.sentiment.GetSentiment(partnerID); ok {
		block.Sentiment = cached
	}

	return block
}

// buildMirrorRow is the partner's own row for this event, the symmetric
// counterpart: status inverted, the acting user's message, emotions and
// sentiment moved into the partner_ block.
func (m *MirrorLog) buildMirrorRow(
	userID, partnerID string,
	status model.Status,
	eventType model.EventType,
	emotions model.EmotionVector,
	sentiment *model.SentimentVector,
	fields *model.EventFields,
) model.TimelineRow {
	inverted := status.Invert()

	side := model.RowSide{
		Status:    inverted,
		EventType: eventType,
		ActionBy:  partnerID,
	}

	// The receiver-strip rule applies here too: when the mirrored
	// status is receiver, the sender's text lives only in the block.
	if inverted != model.StatusReceiver {
		side.Message = fields.Message
		side.CompleteMessage = fields.CompleteMessage
	}

	fields.CopyTimesTo(&side)

	if cached, ok := m.sentiment.GetSentiment(partnerID); ok {
		side.Sentiment = cached
	}

	block := &model.RowSide{
		Status:          status,
		EventType:       eventType,
		ActionBy:        userID,
		Message:         fields.Message,
		CompleteMessage: fields.CompleteMessage,
		WarningCount:    fields.WarningCount,
		CorrectionCount: fields.CorrectionCount,
		Emotions:        emotions,
	}
	fields.CopyTimesTo(block)

	if sentiment != nil {
		block.Sentiment = *sentiment
	} else if cached, ok := m.sentiment.GetSentiment(userID); ok {
		block.Sentiment = cached
	}

	return model.TimelineRow{
		UserID:      partnerID,
		Username:    m.directory.DisplayName(partnerID),
		Own:         side,
		PartnerName: m.directory.DisplayName(userID),
		Partner:     block,
	}
}

// lockUsers serializes recordEvent for the involved users. Both sides
// of a pair lock in sorted order so concurrent events from either side
// cannot deadlock; disjoint users do not block each other.
func (m *MirrorLog) lockUsers(userID, partnerID string) func() {
	ids := []string{userID}
	if partnerID != "" && partnerID != userID {
		if partnerID < userID {
			ids = []string{partnerID, userID}
		} else {
			ids = append(ids, partnerID)
		}
	}

	locked := make([]*sync.Mutex, 0, len(ids))
	for _, id := range ids {
		mu := m.userLock(id)
		mu.Lock()
		locked = append(locked, mu)
	}

	return func() {
		for i := len(locked) - 1; i >= 0; i-- {
			locked[i].Unlock()
		}
	}
}

func (m *MirrorLog) userLock(userID string) *sync.Mutex {
	m.lockMu.Lock()
	defer m.lockMu.Unlock()
	mu, ok := m.locks[userID]
	if !ok {
		mu = &sync.Mutex{}
		m.locks[userID] = mu
	}
	return mu
}
