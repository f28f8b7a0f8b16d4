package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyadlab/chat-logger-go/internal/service"
)

func newChatHandlerFixture(t *testing.T) (*ChatHandler, *service.TimelineStore) {
	t.Helper()
	directory := service.NewSessionDirectory()
	guard := service.NewActivityGuard()
	timelines := service.NewTimelineStore()
	cache := service.NewSentimentCache()
	mirror := service.NewMirrorLog(directory, guard, timelines, cache)
	translator := service.NewTranslationService(nil, []string{"en", "ar"})
	chat := service.NewChatService(mirror, cache, nil, translator)
	return NewChatHandler(chat, directory, translator, nil), timelines
}

func TestChatHandlerValidation(t *testing.T) {
	handler, timelines := newChatHandlerFixture(t)

	t.Run("malformed message body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/messages", strings.NewReader("{bad"))
		rec := httptest.NewRecorder()

		handler.Message(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing message text", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/messages", strings.NewReader(`{"userId":"alice"}`))
		rec := httptest.NewRecorder()

		handler.Message(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "MISSING_REQUIRED")
	})

	t.Run("blank user id on typing", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/typing", strings.NewReader(`{"userId":"","partial":"x"}`))
		rec := httptest.NewRecorder()

		handler.Typing(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	assert.Empty(t, timelines.UserIDs())
}

func TestChatHandlerMessage(t *testing.T) {
	// Unpaired sender: the message is logged solo, without any push to
	// a partner stream.
	handler, timelines := newChatHandlerFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/messages", strings.NewReader(`{"userId":"alice","message":"hello"}`))
	rec := httptest.NewRecorder()

	handler.Message(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, timelines.Get("alice").Len())
	assert.Equal(t, "hello", timelines.Get("alice").Rows()[0].Own.Message)
}

func TestChatHandlerLanguage(t *testing.T) {
	handler, _ := newChatHandlerFixture(t)

	t.Run("supported language accepted", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/language", strings.NewReader(`{"userId":"alice","language":"ar"}`))
		rec := httptest.NewRecorder()

		handler.Language(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"language":"ar"`)
	})

	t.Run("unsupported language rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/language", strings.NewReader(`{"userId":"alice","language":"xx"}`))
		rec := httptest.NewRecorder()

		handler.Language(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "INVALID_INPUT")
	})
}

func TestSessionHandlerValidation(t *testing.T) {
	handler := NewSessionHandler(nil, service.NewSessionDirectory(), nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/stop", strings.NewReader(`{"userId":""}`))
	rec := httptest.NewRecorder()

	handler.Stop(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPairingHandlerValidation(t *testing.T) {
	handler := NewPairingHandler(nil, service.NewSessionDirectory(), nil)

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/pair", strings.NewReader("{bad"))
		rec := httptest.NewRecorder()

		handler.Join(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing username", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/pair", strings.NewReader(`{"userId":"alice"}`))
		rec := httptest.NewRecorder()

		handler.Join(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "MISSING_REQUIRED")
	})

	t.Run("partner lookup for unpaired user", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/partner?userId=alice", nil)
		rec := httptest.NewRecorder()

		handler.Partner(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Contains(t, rec.Body.String(), "NOT_PAIRED")
	})
}
