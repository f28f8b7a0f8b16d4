package affect

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dyadlab/chat-logger-go/internal/config"
	apperrors "github.com/dyadlab/chat-logger-go/internal/errors"
	"github.com/dyadlab/chat-logger-go/internal/model"
)

// SentimentClient calls the sentiment scoring service over HTTP.
type SentimentClient struct {
	baseURL string
	client  *http.Client
}

func NewSentimentClient(baseURL string) *SentimentClient {
	return &SentimentClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: config.OracleTimeout},
	}
}

type sentimentResponse struct {
	Neg       float64 `json:"neg"`
	Neu       float64 `json:"neu"`
	Pos       float64 `json:"pos"`
	Predicted string  `json:"predicted"`
}

func (c *SentimentClient) AnalyzeText(ctx context.Context, text string) (model.SentimentVector, error) {
	var resp sentimentResponse
	err := postJSON(ctx, c.client, c.baseURL+"/analyze", map[string]string{"text": text}, &resp)
	if err != nil {
		return model.SentimentVector{}, apperrors.InferenceFailed("sentiment", err)
	}
	return model.SentimentVector{Neg: resp.Neg, Neu: resp.Neu, Pos: resp.Pos}, nil
}

// EmotionClient calls the facial emotion scoring service over HTTP.
// Frames are posted base64 encoded.
type EmotionClient struct {
	baseURL string
	client  *http.Client
}

func NewEmotionClient(baseURL string) *EmotionClient {
	return &EmotionClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: config.OracleTimeout},
	}
}

func (c *EmotionClient) AnalyzeFrame(ctx context.Context, frame []byte) (model.EmotionVector, error) {
	payload := map[string]string{"frame": base64.StdEncoding.EncodeToString(frame)}

	var resp model.EmotionVector
	if err := postJSON(ctx, c.client, c.baseURL+"/analyze", payload, &resp); err != nil {
		return model.EmotionVector{}, apperrors.InferenceFailed("emotion", err)
	}
	return resp, nil
}

// TranslateClient calls the translation service over HTTP.
type TranslateClient struct {
	baseURL string
	client  *http.Client
}

func NewTranslateClient(baseURL string) *TranslateClient {
	return &TranslateClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: config.OracleTimeout},
	}
}

type translateResponse struct {
	Translated string `json:"translated"`
}

func (c *TranslateClient) Translate(ctx context.Context, text, targetLang string) (string, error) {
	payload := map[string]string{"text": text, "target": targetLang}

	var resp translateResponse
	if err := postJSON(ctx, c.client, c.baseURL+"/translate", payload, &resp); err != nil {
		return "", apperrors.InferenceFailed("translate", err)
	}
	return resp.Translated, nil
}

func postJSON(ctx context.Context, client *http.Client, url string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	elapsed := time.Since(start)

	if err != nil {
		log.Error().
			Err(err).
			Str("url", url).
			Dur("elapsed", elapsed).
			Msg("oracle request error")
		return fmt.Errorf("oracle request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Error().
			Str("url", url).
			Int("status", resp.StatusCode).
			Dur("elapsed", elapsed).
			Msg("oracle request failed")
		return fmt.Errorf("oracle returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}
