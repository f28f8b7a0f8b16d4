package affect

import (
	"context"
	"errors"
	"sync"

	apperrors "github.com/dyadlab/chat-logger-go/internal/errors"
	"github.com/dyadlab/chat-logger-go/internal/model"
)

var errNotConfigured = errors.New("oracle not configured")

// EmotionOracle scores a captured camera frame.
type EmotionOracle interface {
	AnalyzeFrame(ctx context.Context, frame []byte) (model.EmotionVector, error)
}

// SentimentOracle scores a piece of text.
type SentimentOracle interface {
	AnalyzeText(ctx context.Context, text string) (model.SentimentVector, error)
}

// TranslateOracle turns text into another language.
type TranslateOracle interface {
	Translate(ctx context.Context, text, targetLang string) (string, error)
}

// Engine funnels every inference call through a single lock. The
// backing models are not safe for concurrent invocation, so emotion,
// sentiment and translation requests all take turns.
type Engine struct {
	mu        sync.Mutex
	emotion   EmotionOracle
	sentiment SentimentOracle
	translate TranslateOracle
}

func NewEngine(emotion EmotionOracle, sentiment SentimentOracle, translate TranslateOracle) *Engine {
	return &Engine{emotion: emotion, sentiment: sentiment, translate: translate}
}

func (e *Engine) AnalyzeFrame(ctx context.Context, frame []byte) (model.EmotionVector, error) {
	if e.emotion == nil {
		return model.EmotionVector{}, apperrors.InferenceFailed("emotion", errNotConfigured)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.emotion.AnalyzeFrame(ctx, frame)
}

func (e *Engine) AnalyzeText(ctx context.Context, text string) (model.SentimentVector, error) {
	if e.sentiment == nil {
		return model.SentimentVector{}, apperrors.InferenceFailed("sentiment", errNotConfigured)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sentiment.AnalyzeText(ctx, text)
}

func (e *Engine) Translate(ctx context.Context, text, targetLang string) (string, error) {
	if e.translate == nil {
		return "", apperrors.InferenceFailed("translate", errNotConfigured)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.translate.Translate(ctx, text, targetLang)
}
