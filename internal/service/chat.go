package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/dyadlab/chat-logger-go/internal/config"
	"github.com/dyadlab/chat-logger-go/internal/model"
)

// ChatService handles message and typing traffic: sentiment analysis
// with graceful degradation, negative-typing warnings, translations and
// the resulting timeline rows.
type ChatService struct {
	mirror     *MirrorLog
	cache      *SentimentCache
	sentiment  SentimentOracle
	translator *TranslationService

	mu       sync.Mutex
	warned   map[string]bool
	warnings map[string]int
	corrects map[string]int
	current  map[string]string
}

// SentimentOracle scores a piece of text.
type SentimentOracle interface {
	AnalyzeText(ctx context.Context, text string) (model.SentimentVector, error)
}

var errNoSentimentOracle = errors.New("sentiment oracle not configured")

func NewChatService(
	mirror *MirrorLog,
	cache *SentimentCache,
	sentiment SentimentOracle,
	translator *TranslationService,
) *ChatService {
	return &ChatService{
		mirror:     mirror,
		cache:      cache,
		sentiment:  sentiment,
		translator: translator,
		warned:     make(map[string]bool),
		warnings:   make(map[string]int),
		corrects:   make(map[string]int),
		current:    make(map[string]string),
	}
}

// MessageResult is what the transport layer needs to deliver a sent
// message: the per-language renderings and the sender's scores.
type MessageResult struct {
	Translations map[string]string
	Sentiment    model.SentimentVector
}

// HandleMessage analyzes, translates and logs one delivered message.
// Sentiment failures degrade to the sender's cached scores; delivery
// itself never fails on the oracle.
func (s *ChatService) HandleMessage(ctx context.Context, userID, text string) (MessageResult, error) {
	var (
		scores   model.SentimentVector
		explicit *model.SentimentVector
	)

	if analyzed, err := s.analyzeText(ctx, text); err == nil {
		scores = analyzed
		explicit = &analyzed
		s.cache.Update(userID, analyzed)
	} else {
		log.Warn().Err(err).Str("userId", userID).Msg("sentiment analysis failed, logging without fresh scores")
		if cached, ok := s.cache.GetSentiment(userID); ok {
			scores = cached
		}
	}

	s.mu.Lock()
	s.current[userID] = text
	warnings := s.warnings[userID]
	corrections := s.corrects[userID]
	s.mu.Unlock()

	fields := model.EventFields{
		Message:         text,
		CompleteMessage: text,
		WarningCount:    warnings,
		CorrectionCount: corrections,
	}

	if err := s.mirror.RecordEvent(userID, model.StatusSender, model.EventMessage, model.EmotionVector{}, explicit, fields); err != nil {
		return MessageResult{}, err
	}

	return MessageResult{
		Translations: s.translator.BuildTranslations(ctx, text),
		Sentiment:    scores,
	}, nil
}

// TypingResult reports whether the partial text triggered a new
// negativity warning the transport should surface.
type TypingResult struct {
	Analyzed    bool
	Alert       bool
	Warnings    int
	Corrections int
}

// HandleTyping analyzes a partial message when it is long enough to be
// meaningful. Negative drafts raise a warning; a later non-negative
// draft while a warning is outstanding counts as a correction. Only
// analyzed drafts produce a timeline row.
func (s *ChatService) HandleTyping(ctx context.Context, userID, partial string) (TypingResult, error) {
	s.mu.Lock()
	s.current[userID] = partial
	s.mu.Unlock()

	if len(strings.Fields(partial)) < config.TypingSentimentMinWords {
		return TypingResult{}, nil
	}

	scores, err := s.analyzeText(ctx, partial)
	if err != nil {
		log.Warn().Err(err).Str("userId", userID).Msg("typing sentiment analysis failed, skipping row")
		return TypingResult{}, nil
	}
	s.cache.Update(userID, scores)

	var result TypingResult
	result.Analyzed = true

	s.mu.Lock()
	if scores.Predicted() == model.SentimentNegative {
		s.warnings[userID]++
		if !s.warned[userID] {
			s.warned[userID] = true
			result.Alert = true
		}
	} else if s.warned[userID] {
		s.corrects[userID]++
		s.warned[userID] = false
	}
	result.Warnings = s.warnings[userID]
	result.Corrections = s.corrects[userID]
	s.mu.Unlock()

	fields := model.EventFields{
		Message:         partial,
		WarningCount:    result.Warnings,
		CorrectionCount: result.Corrections,
	}

	if err := s.mirror.RecordEvent(userID, model.StatusSender, model.EventTyping, model.EmotionVector{}, &scores, fields); err != nil {
		return TypingResult{}, err
	}

	return result, nil
}

// CurrentMessage returns the user's latest draft or delivered text so
// emotion rows can carry the words on screen when the frame arrived.
func (s *ChatService) CurrentMessage(userID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current[userID]
}

// WarningState returns the user's running warning and correction
// counters.
func (s *ChatService) WarningState(userID string) (warnings, corrections int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.warnings[userID], s.corrects[userID]
}

// Reset clears the user's draft and warning state. Implements Resetter.
func (s *ChatService) Reset(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.warned, userID)
	delete(s.warnings, userID)
	delete(s.corrects, userID)
	delete(s.current, userID)
}

func (s *ChatService) analyzeText(ctx context.Context, text string) (model.SentimentVector, error) {
	if s.sentiment == nil {
		return model.SentimentVector{}, errNoSentimentOracle
	}
	return s.sentiment.AnalyzeText(ctx, text)
}
