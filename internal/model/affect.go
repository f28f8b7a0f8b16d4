package model

// EmotionVector is the 7-way emotion distribution produced by the frame
// analysis oracle. A zero value means "no affect data" and is valid.
type EmotionVector struct {
	Angry    float64 `json:"angry"`
	Disgust  float64 `json:"disgust"`
	Fear     float64 `json:"fear"`
	Happy    float64 `json:"happy"`
	Sad      float64 `json:"sad"`
	Surprise float64 `json:"surprise"`
	Neutral  float64 `json:"neutral"`
}

// SentimentVector is the 3-way sentiment distribution produced by the
// text analysis oracle.
type SentimentVector struct {
	Neg float64 `json:"neg"`
	Neu float64 `json:"neu"`
	Pos float64 `json:"pos"`
}

const (
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
	SentimentPositive = "positive"
)

// Predicted returns the label of the dominant sentiment class. Ties
// resolve in neg < neu < pos order, matching the oracle's argmax.
func (v SentimentVector) Predicted() string {
	label := SentimentNegative
	best := v.Neg
	if v.Neu >= best {
		label = SentimentNeutral
		best = v.Neu
	}
	if v.Pos >= best {
		label = SentimentPositive
	}
	return label
}

// IsZero reports whether no sentiment has been recorded.
func (v SentimentVector) IsZero() bool {
	return v.Neg == 0 && v.Neu == 0 && v.Pos == 0
}
