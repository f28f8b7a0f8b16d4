package service

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

// TranslateOracle turns text into the given target language.
type TranslateOracle interface {
	Translate(ctx context.Context, text, targetLang string) (string, error)
}

const translationCacheLimit = 1000

// TranslationService tracks each user's preferred language and caches
// completed translations. A failed translation degrades to the
// original text so chat delivery never blocks on the oracle.
type TranslationService struct {
	oracle    TranslateOracle
	supported map[string]bool

	mu    sync.Mutex
	langs map[string]string
	cache map[string]string
}

func NewTranslationService(oracle TranslateOracle, supportedLanguages []string) *TranslationService {
	supported := make(map[string]bool, len(supportedLanguages))
	for _, lang := range supportedLanguages {
		supported[strings.ToLower(strings.TrimSpace(lang))] = true
	}
	return &TranslationService{
		oracle:    oracle,
		supported: supported,
		langs:     make(map[string]string),
		cache:     make(map[string]string),
	}
}

// SetLanguage records the user's preferred language. An unsupported or
// blank code clears the preference, and any change invalidates the
// shared translation cache.
func (t *TranslationService) SetLanguage(userID, lang string) bool {
	lang = strings.ToLower(strings.TrimSpace(lang))

	t.mu.Lock()
	defer t.mu.Unlock()

	prev := t.langs[userID]
	if lang == "" || !t.supported[lang] {
		delete(t.langs, userID)
		if prev != "" {
			t.cache = make(map[string]string)
		}
		return lang == ""
	}

	t.langs[userID] = lang
	if prev != lang {
		t.cache = make(map[string]string)
	}
	return true
}

// Language returns the user's preferred language, or "" when unset.
func (t *TranslationService) Language(userID string) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.langs[userID]
}

// BuildTranslations renders text into every language currently
// preferred by at least one user. Oracle failures fall back to the
// original text.
func (t *TranslationService) BuildTranslations(ctx context.Context, text string) map[string]string {
	t.mu.Lock()
	targets := make(map[string]bool, len(t.langs))
	for _, lang := range t.langs {
		targets[lang] = true
	}
	t.mu.Unlock()

	out := make(map[string]string, len(targets))
	for lang := range targets {
		out[lang] = t.translate(ctx, text, lang)
	}
	return out
}

func (t *TranslationService) translate(ctx context.Context, text, lang string) string {
	key := lang + "\x00" + text

	t.mu.Lock()
	if cached, ok := t.cache[key]; ok {
		t.mu.Unlock()
		return cached
	}
	t.mu.Unlock()

	if t.oracle == nil {
		return text
	}

	translated, err := t.oracle.Translate(ctx, text, lang)
	if err != nil {
		log.Warn().Err(err).Str("lang", lang).Msg("translation failed, using original text")
		return text
	}

	t.mu.Lock()
	if len(t.cache) >= translationCacheLimit {
		t.cache = make(map[string]string)
	}
	t.cache[key] = translated
	t.mu.Unlock()

	return translated
}
