package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/dyadlab/chat-logger-go/internal/errors"
	"github.com/dyadlab/chat-logger-go/internal/model"
)

type stubSentiment struct {
	scores map[string]model.SentimentVector
}

func (s *stubSentiment) GetSentiment(userID string) (model.SentimentVector, bool) {
	v, ok := s.scores[userID]
	return v, ok
}

func newMirrorFixture(t *testing.T) (*MirrorLog, *SessionDirectory, *TimelineStore, *stubSentiment) {
	t.Helper()
	directory := NewSessionDirectory()
	guard := NewActivityGuard()
	timelines := NewTimelineStore()
	sentiment := &stubSentiment{scores: make(map[string]model.SentimentVector)}
	mirror := NewMirrorLog(directory, guard, timelines, sentiment)
	directory.AddResetter(guard)
	return mirror, directory, timelines, sentiment
}

func TestRecordEventValidation(t *testing.T) {
	mirror, _, timelines, _ := newMirrorFixture(t)

	err := mirror.RecordEvent("  ", model.StatusSender, model.EventMessage, model.EmotionVector{}, nil, model.EventFields{})

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeInvalidUserID, apperrors.GetCode(err))
	assert.Empty(t, timelines.UserIDs())
}

func TestRecordEventSolo(t *testing.T) {
	mirror, _, timelines, _ := newMirrorFixture(t)

	err := mirror.RecordEvent("alice", model.StatusSender, model.EventMessage, model.EmotionVector{}, nil, model.EventFields{
		Message: "hello",
	})
	require.NoError(t, err)

	rows := timelines.Get("alice").Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "hello", rows[0].Own.Message)
	assert.Nil(t, rows[0].Partner)
	assert.Empty(t, rows[0].PartnerName)
	assert.ElementsMatch(t, []string{"alice"}, timelines.UserIDs())
}

func TestRecordEventMirroring(t *testing.T) {
	t.Run("one event produces a row on each timeline", func(t *testing.T) {
		mirror, directory, timelines, _ := newMirrorFixture(t)
		directory.Pair("alice", "Alice", "bob", "Bob")

		err := mirror.RecordEvent("alice", model.StatusSender, model.EventMessage, model.EmotionVector{}, nil, model.EventFields{
			Message:         "hi",
			CompleteMessage: "hi",
		})
		require.NoError(t, err)

		require.Equal(t, 1, timelines.Get("alice").Len())
		require.Equal(t, 1, timelines.Get("bob").Len())
	})

	t.Run("mirror row inverts status and names", func(t *testing.T) {
		mirror, directory, timelines, _ := newMirrorFixture(t)
		directory.Pair("alice", "Alice", "bob", "Bob")

		require.NoError(t, mirror.RecordEvent("alice", model.StatusSender, model.EventMessage, model.EmotionVector{}, nil, model.EventFields{
			Message: "hi",
		}))

		own := timelines.Get("alice").Rows()[0]
		assert.Equal(t, model.StatusSender, own.Own.Status)
		assert.Equal(t, "Alice", own.Username)
		assert.Equal(t, "Bob", own.PartnerName)

		mirrored := timelines.Get("bob").Rows()[0]
		assert.Equal(t, model.StatusReceiver, mirrored.Own.Status)
		assert.Equal(t, "bob", mirrored.UserID)
		assert.Equal(t, "Bob", mirrored.Username)
		assert.Equal(t, "Alice", mirrored.PartnerName)
	})

	t.Run("receiver side never carries the text in its own fields", func(t *testing.T) {
		mirror, directory, timelines, _ := newMirrorFixture(t)
		directory.Pair("alice", "Alice", "bob", "Bob")

		require.NoError(t, mirror.RecordEvent("alice", model.StatusSender, model.EventMessage, model.EmotionVector{}, nil, model.EventFields{
			Message:         "hi",
			CompleteMessage: "hi there",
		}))

		mirrored := timelines.Get("bob").Rows()[0]
		assert.Empty(t, mirrored.Own.Message)
		assert.Empty(t, mirrored.Own.CompleteMessage)

		require.NotNil(t, mirrored.Partner)
		assert.Equal(t, "hi", mirrored.Partner.Message)
		assert.Equal(t, "hi there", mirrored.Partner.CompleteMessage)
		assert.Equal(t, "alice", mirrored.Partner.ActionBy)
	})

	t.Run("partner block on the acting side is inverted", func(t *testing.T) {
		mirror, directory, timelines, _ := newMirrorFixture(t)
		directory.Pair("alice", "Alice", "bob", "Bob")

		require.NoError(t, mirror.RecordEvent("alice", model.StatusSender, model.EventMessage, model.EmotionVector{}, nil, model.EventFields{
			Message: "hi",
		}))

		own := timelines.Get("alice").Rows()[0]
		require.NotNil(t, own.Partner)
		assert.Equal(t, model.StatusReceiver, own.Partner.Status)
		assert.Equal(t, "bob", own.Partner.ActionBy)
	})

	t.Run("time fields are copied verbatim to both rows", func(t *testing.T) {
		mirror, directory, timelines, _ := newMirrorFixture(t)
		directory.Pair("alice", "Alice", "bob", "Bob")

		fields := model.EventFields{
			StartSendingTime: "2026-09-01 10:00:00.000",
			EndSendingTime:   "2026-09-01 10:00:05.000",
			TotalSendingTime: "5.0",
		}
		require.NoError(t, mirror.RecordEvent("alice", model.StatusSender, model.EventEndSending, model.EmotionVector{}, nil, fields))

		own := timelines.Get("alice").Rows()[0]
		mirrored := timelines.Get("bob").Rows()[0]

		for _, side := range []model.RowSide{own.Own, *own.Partner, mirrored.Own, *mirrored.Partner} {
			assert.Equal(t, "2026-09-01 10:00:00.000", side.StartSendingTime)
			assert.Equal(t, "2026-09-01 10:00:05.000", side.EndSendingTime)
			assert.Equal(t, "5.0", side.TotalSendingTime)
		}
	})

	t.Run("emotions stay on the acting side", func(t *testing.T) {
		mirror, directory, timelines, _ := newMirrorFixture(t)
		directory.Pair("alice", "Alice", "bob", "Bob")

		emotions := model.EmotionVector{Happy: 0.9, Neutral: 0.1}
		require.NoError(t, mirror.RecordEvent("alice", model.StatusSender, model.EventEmotionSample, emotions, nil, model.EventFields{}))

		own := timelines.Get("alice").Rows()[0]
		mirrored := timelines.Get("bob").Rows()[0]

		assert.Equal(t, emotions, own.Own.Emotions)
		assert.Equal(t, model.EmotionVector{}, mirrored.Own.Emotions)
		assert.Equal(t, emotions, mirrored.Partner.Emotions)
	})
}

func TestRecordEventSentimentMerge(t *testing.T) {
	t.Run("explicit sentiment wins", func(t *testing.T) {
		mirror, directory, timelines, sentiment := newMirrorFixture(t)
		directory.Pair("alice", "Alice", "bob", "Bob")
		sentiment.scores["alice"] = model.SentimentVector{Neu: 1}

		explicit := model.SentimentVector{Pos: 0.8, Neu: 0.2}
		require.NoError(t, mirror.RecordEvent("alice", model.StatusSender, model.EventMessage, model.EmotionVector{}, &explicit, model.EventFields{
			Message: "great",
		}))

		assert.Equal(t, explicit, timelines.Get("alice").Rows()[0].Own.Sentiment)
		assert.Equal(t, explicit, timelines.Get("bob").Rows()[0].Partner.Sentiment)
	})

	t.Run("cached sentiment fills in when none passed", func(t *testing.T) {
		mirror, directory, timelines, sentiment := newMirrorFixture(t)
		directory.Pair("alice", "Alice", "bob", "Bob")
		cached := model.SentimentVector{Neg: 0.7, Neu: 0.3}
		sentiment.scores["alice"] = cached

		require.NoError(t, mirror.RecordEvent("alice", model.StatusSender, model.EventStartSending, model.EmotionVector{}, nil, model.EventFields{
			StartSendingTime: "2026-09-01 10:00:00.000",
		}))

		assert.Equal(t, cached, timelines.Get("alice").Rows()[0].Own.Sentiment)
	})

	t.Run("partner block carries partner's cached sentiment", func(t *testing.T) {
		mirror, directory, timelines, sentiment := newMirrorFixture(t)
		directory.Pair("alice", "Alice", "bob", "Bob")
		bobScores := model.SentimentVector{Pos: 0.6, Neu: 0.4}
		sentiment.scores["bob"] = bobScores

		require.NoError(t, mirror.RecordEvent("alice", model.StatusSender, model.EventMessage, model.EmotionVector{}, nil, model.EventFields{
			Message: "hey",
		}))

		own := timelines.Get("alice").Rows()[0]
		assert.Equal(t, bobScores, own.Partner.Sentiment)

		mirrored := timelines.Get("bob").Rows()[0]
		assert.Equal(t, bobScores, mirrored.Own.Sentiment)
	})
}

func TestRecordEventGuard(t *testing.T) {
	t.Run("duplicate start sending drops only the timestamp", func(t *testing.T) {
		mirror, directory, timelines, _ := newMirrorFixture(t)
		directory.Pair("alice", "Alice", "bob", "Bob")

		fields := model.EventFields{StartSendingTime: "2026-09-01 10:00:00.000"}
		require.NoError(t, mirror.RecordEvent("alice", model.StatusSender, model.EventStartSending, model.EmotionVector{}, nil, fields))
		require.NoError(t, mirror.RecordEvent("alice", model.StatusSender, model.EventStartSending, model.EmotionVector{}, nil, fields))

		rows := timelines.Get("alice").Rows()
		require.Len(t, rows, 2)
		assert.Equal(t, "2026-09-01 10:00:00.000", rows[0].Own.StartSendingTime)
		assert.Empty(t, rows[1].Own.StartSendingTime)
	})

	t.Run("end sending reopens the interval", func(t *testing.T) {
		mirror, directory, timelines, _ := newMirrorFixture(t)
		directory.Pair("alice", "Alice", "bob", "Bob")

		start := model.EventFields{StartSendingTime: "2026-09-01 10:00:00.000"}
		require.NoError(t, mirror.RecordEvent("alice", model.StatusSender, model.EventStartSending, model.EmotionVector{}, nil, start))
		require.NoError(t, mirror.RecordEvent("alice", model.StatusSender, model.EventEndSending, model.EmotionVector{}, nil, model.EventFields{
			EndSendingTime: "2026-09-01 10:00:05.000",
		}))
		require.NoError(t, mirror.RecordEvent("alice", model.StatusSender, model.EventStartSending, model.EmotionVector{}, nil, start))

		rows := timelines.Get("alice").Rows()
		require.Len(t, rows, 3)
		assert.Equal(t, "2026-09-01 10:00:00.000", rows[2].Own.StartSendingTime)
	})

	t.Run("cancel sending clears the flag", func(t *testing.T) {
		mirror, directory, timelines, _ := newMirrorFixture(t)
		directory.Pair("alice", "Alice", "bob", "Bob")

		start := model.EventFields{StartSendingTime: "2026-09-01 10:00:00.000"}
		require.NoError(t, mirror.RecordEvent("alice", model.StatusSender, model.EventStartSending, model.EmotionVector{}, nil, start))
		require.NoError(t, mirror.RecordEvent("alice", model.StatusSender, model.EventCancelSending, model.EmotionVector{}, nil, model.EventFields{}))
		require.NoError(t, mirror.RecordEvent("alice", model.StatusSender, model.EventStartSending, model.EmotionVector{}, nil, start))

		rows := timelines.Get("alice").Rows()
		require.Len(t, rows, 3)
		assert.Equal(t, "2026-09-01 10:00:00.000", rows[2].Own.StartSendingTime)
	})

	t.Run("duplicate start viewing drops only the timestamp", func(t *testing.T) {
		mirror, directory, timelines, _ := newMirrorFixture(t)
		directory.Pair("alice", "Alice", "bob", "Bob")

		fields := model.EventFields{StartViewingTime: "2026-09-01 10:00:01.000"}
		require.NoError(t, mirror.RecordEvent("alice", model.StatusReceiver, model.EventStartViewing, model.EmotionVector{}, nil, fields))
		require.NoError(t, mirror.RecordEvent("alice", model.StatusReceiver, model.EventStartViewing, model.EmotionVector{}, nil, fields))

		rows := timelines.Get("alice").Rows()
		require.Len(t, rows, 2)
		assert.Equal(t, "2026-09-01 10:00:01.000", rows[0].Own.StartViewingTime)
		assert.Empty(t, rows[1].Own.StartViewingTime)
	})

	t.Run("guard does not touch the mirrored side", func(t *testing.T) {
		mirror, directory, timelines, _ := newMirrorFixture(t)
		directory.Pair("alice", "Alice", "bob", "Bob")

		fields := model.EventFields{StartSendingTime: "2026-09-01 10:00:00.000"}
		require.NoError(t, mirror.RecordEvent("alice", model.StatusSender, model.EventStartSending, model.EmotionVector{}, nil, fields))
		require.NoError(t, mirror.RecordEvent("alice", model.StatusSender, model.EventStartSending, model.EmotionVector{}, nil, fields))

		mirroredRows := timelines.Get("bob").Rows()
		require.Len(t, mirroredRows, 2)
		assert.Equal(t, "2026-09-01 10:00:00.000", mirroredRows[1].Own.StartSendingTime)
	})
}

func TestRecordEventConversation(t *testing.T) {
	// Two messages each way: four rows per timeline, each user seeing
	// their own two sends and the partner's two mirrored sends.
	mirror, directory, timelines, _ := newMirrorFixture(t)
	directory.Pair("alice", "Alice", "bob", "Bob")

	require.NoError(t, mirror.RecordEvent("alice", model.StatusSender, model.EventMessage, model.EmotionVector{}, nil, model.EventFields{Message: "hi bob"}))
	require.NoError(t, mirror.RecordEvent("bob", model.StatusSender, model.EventMessage, model.EmotionVector{}, nil, model.EventFields{Message: "hi alice"}))
	require.NoError(t, mirror.RecordEvent("alice", model.StatusSender, model.EventMessage, model.EmotionVector{}, nil, model.EventFields{Message: "how are you"}))
	require.NoError(t, mirror.RecordEvent("bob", model.StatusSender, model.EventMessage, model.EmotionVector{}, nil, model.EventFields{Message: "fine thanks"}))

	aliceRows := timelines.Get("alice").Rows()
	bobRows := timelines.Get("bob").Rows()
	require.Len(t, aliceRows, 4)
	require.Len(t, bobRows, 4)

	assert.Equal(t, model.StatusSender, aliceRows[0].Own.Status)
	assert.Equal(t, "hi bob", aliceRows[0].Own.Message)

	assert.Equal(t, model.StatusReceiver, aliceRows[1].Own.Status)
	assert.Empty(t, aliceRows[1].Own.Message)
	assert.Equal(t, "hi alice", aliceRows[1].Partner.Message)

	assert.Equal(t, model.StatusReceiver, bobRows[0].Own.Status)
	assert.Equal(t, "hi bob", bobRows[0].Partner.Message)

	assert.Equal(t, model.StatusSender, bobRows[3].Own.Status)
	assert.Equal(t, "fine thanks", bobRows[3].Own.Message)
}
