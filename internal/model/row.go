package model

import "strconv"

// TimestampLayout is the millisecond-resolution wall-clock format used
// for the authoritative row timestamp.
const TimestampLayout = "2006-01-02 15:04:05.000"

// RowSide is the per-participant half of a timeline row. The same shape
// appears twice per row: once for the owner and once, prefixed
// partner_, as a denormalized snapshot of the partner at the same
// logical instant. The partner block is not a reference to the
// partner's own timeline.
type RowSide struct {
	Status           Status    `json:"status"`
	Message          string    `json:"message,omitempty"`
	CompleteMessage  string    `json:"completeMessage,omitempty"`
	StartSendingTime string    `json:"startSendingTime,omitempty"`
	EndSendingTime   string    `json:"endSendingTime,omitempty"`
	TotalSendingTime string    `json:"totalSendingTime,omitempty"`
	StartViewingTime string    `json:"startViewingTime,omitempty"`
	EndViewingTime   string    `json:"endViewingTime,omitempty"`
	TotalViewingTime string    `json:"totalViewingTime,omitempty"`
	EventType        EventType `json:"eventType,omitempty"`
	ActionBy         string    `json:"actionBy,omitempty"`
	WarningCount     int       `json:"warningCount"`
	CorrectionCount  int       `json:"correctionCount"`
	Emotions         EmotionVector   `json:"emotions"`
	Sentiment        SentimentVector `json:"sentiment"`
}

// TimelineRow is one fixed-schema record of a user's timeline. Rows are
// never mutated after append.
type TimelineRow struct {
	Timestamp   string   `json:"timestamp"`
	UserID      string   `json:"userId"`
	Username    string   `json:"username"`
	Own         RowSide  `json:"own"`
	PartnerName string   `json:"partnerName,omitempty"`
	Partner     *RowSide `json:"partner,omitempty"` // nil when unpaired at log time
}

var sideColumns = []string{
	"status", "message", "complete_message",
	"start_sending_time", "end_sending_time", "total_sending_time",
	"start_viewing_time", "end_viewing_time", "total_viewing_time",
	"event_type", "action_by", "warning_count", "correction_count",
	"angry", "disgust", "fear", "happy", "sad", "surprise", "neutral",
	"sentiment_neg", "sentiment_neu", "sentiment_pos",
}

// Columns returns the fixed export header, own block first, then the
// partner block with every column prefixed partner_.
func Columns() []string {
	cols := []string{"timestamp", "user_id", "username"}
	cols = append(cols, sideColumns...)
	cols = append(cols, "partner_name")
	for _, c := range sideColumns {
		cols = append(cols, "partner_"+c)
	}
	return cols
}

// Record flattens the row into export column order. Partner columns are
// empty when the row was logged unpaired.
func (r *TimelineRow) Record() []string {
	rec := []string{r.Timestamp, r.UserID, r.Username}
	rec = append(rec, r.Own.record()...)
	rec = append(rec, r.PartnerName)
	if r.Partner != nil {
		rec = append(rec, r.Partner.record()...)
	} else {
		rec = append(rec, make([]string, len(sideColumns))...)
	}
	return rec
}

func (s *RowSide) record() []string {
	return []string{
		string(s.Status), s.Message, s.CompleteMessage,
		s.StartSendingTime, s.EndSendingTime, s.TotalSendingTime,
		s.StartViewingTime, s.EndViewingTime, s.TotalViewingTime,
		string(s.EventType), s.ActionBy,
		strconv.Itoa(s.WarningCount), strconv.Itoa(s.CorrectionCount),
		formatScore(s.Emotions.Angry), formatScore(s.Emotions.Disgust),
		formatScore(s.Emotions.Fear), formatScore(s.Emotions.Happy),
		formatScore(s.Emotions.Sad), formatScore(s.Emotions.Surprise),
		formatScore(s.Emotions.Neutral),
		formatScore(s.Sentiment.Neg), formatScore(s.Sentiment.Neu),
		formatScore(s.Sentiment.Pos),
	}
}

func formatScore(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
