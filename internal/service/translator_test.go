package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTranslator struct {
	calls int
	err   error
}

func (s *stubTranslator) Translate(ctx context.Context, text, targetLang string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return fmt.Sprintf("[%s] %s", targetLang, text), nil
}

func TestSetLanguage(t *testing.T) {
	t.Run("supported language is accepted", func(t *testing.T) {
		svc := NewTranslationService(&stubTranslator{}, []string{"en", "ar"})

		assert.True(t, svc.SetLanguage("alice", "ar"))
		assert.Equal(t, "ar", svc.Language("alice"))
	})

	t.Run("codes are lowercased", func(t *testing.T) {
		svc := NewTranslationService(&stubTranslator{}, []string{"en", "ar"})

		assert.True(t, svc.SetLanguage("alice", " AR "))
		assert.Equal(t, "ar", svc.Language("alice"))
	})

	t.Run("unsupported language clears the preference", func(t *testing.T) {
		svc := NewTranslationService(&stubTranslator{}, []string{"en"})

		svc.SetLanguage("alice", "en")
		assert.False(t, svc.SetLanguage("alice", "klingon"))
		assert.Empty(t, svc.Language("alice"))
	})

	t.Run("blank clears the preference", func(t *testing.T) {
		svc := NewTranslationService(&stubTranslator{}, []string{"en"})

		svc.SetLanguage("alice", "en")
		assert.True(t, svc.SetLanguage("alice", ""))
		assert.Empty(t, svc.Language("alice"))
	})
}

func TestBuildTranslations(t *testing.T) {
	t.Run("translates into every preferred language once", func(t *testing.T) {
		oracle := &stubTranslator{}
		svc := NewTranslationService(oracle, []string{"en", "ar", "es"})
		svc.SetLanguage("alice", "ar")
		svc.SetLanguage("bob", "es")
		svc.SetLanguage("carol", "ar")

		out := svc.BuildTranslations(context.Background(), "hello")

		require.Len(t, out, 2)
		assert.Equal(t, "[ar] hello", out["ar"])
		assert.Equal(t, "[es] hello", out["es"])
		assert.Equal(t, 2, oracle.calls)
	})

	t.Run("repeated text is served from cache", func(t *testing.T) {
		oracle := &stubTranslator{}
		svc := NewTranslationService(oracle, []string{"ar"})
		svc.SetLanguage("alice", "ar")

		svc.BuildTranslations(context.Background(), "hello")
		svc.BuildTranslations(context.Background(), "hello")

		assert.Equal(t, 1, oracle.calls)
	})

	t.Run("oracle failure falls back to original text", func(t *testing.T) {
		oracle := &stubTranslator{err: errors.New("oracle down")}
		svc := NewTranslationService(oracle, []string{"ar"})
		svc.SetLanguage("alice", "ar")

		out := svc.BuildTranslations(context.Background(), "hello")

		assert.Equal(t, "hello", out["ar"])
	})

	t.Run("failures are not cached", func(t *testing.T) {
		oracle := &stubTranslator{err: errors.New("oracle down")}
		svc := NewTranslationService(oracle, []string{"ar"})
		svc.SetLanguage("alice", "ar")

		svc.BuildTranslations(context.Background(), "hello")
		oracle.err = nil
		out := svc.BuildTranslations(context.Background(), "hello")

		assert.Equal(t, "[ar] hello", out["ar"])
	})

	t.Run("no preferences means no translations", func(t *testing.T) {
		svc := NewTranslationService(&stubTranslator{}, []string{"en"})
		out := svc.BuildTranslations(context.Background(), "hello")
		assert.Empty(t, out)
	})

	t.Run("nil oracle degrades to original text", func(t *testing.T) {
		svc := NewTranslationService(nil, []string{"ar"})
		svc.SetLanguage("alice", "ar")

		out := svc.BuildTranslations(context.Background(), "hello")
		assert.Equal(t, "hello", out["ar"])
	})
}
