package core

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	KontextName    = "Kontext"
	KontextVersion = "0.1.0"
)

// ContextType is the closed set of context dimensions tracked per turn.
type ContextType string

const (
	TypeLocation ContextType = "location"
	TypeTime     ContextType = "time"
	TypeTopic    ContextType = "topic"
	TypeIntent   ContextType = "intent"
)

// ContextTypes returns all members in a fixed order.
func ContextTypes() []ContextType {
	return []ContextType{TypeLocation, TypeTime, TypeTopic, TypeIntent}
}

func (t ContextType) Valid() bool {
	switch t {
	case TypeLocation, TypeTime, TypeTopic, TypeIntent:
		return true
	}
	return false
}

func (t ContextType) String() string {
	return string(t)
}

// ContextItem is a single typed, confidence-scored fact extracted from a
// conversational turn. Items are immutable once created; a newer item of
// the same type supersedes an older one, it never mutates it.
type ContextItem struct {
	ID          string      `json:"id"`
	Type        ContextType `json:"type"`
	Value       string      `json:"value"`
	Confidence  float64     `json:"confidence"`
	ExtractedAt time.Time   `json:"extracted_at"`
	TurnID      string      `json:"turn_id"`
}

func NewContextItem(t ContextType, value string, confidence float64, turnID string, at time.Time) ContextItem {
	return ContextItem{
		ID:          uuid.NewString(),
		Type:        t,
		Value:       value,
		Confidence:  confidence,
		ExtractedAt: at,
		TurnID:      turnID,
	}
}

// Validate rejects malformed items at the ingestion boundary.
func (i ContextItem) Validate() error {
	if !i.Type.Valid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidContextItem, i.Type)
	}
	if i.Confidence < 0 || i.Confidence > 1 {
		return fmt.Errorf("%w: confidence %v out of range", ErrInvalidContextItem, i.Confidence)
	}
	if i.Value == "" {
		return fmt.Errorf("%w: empty value", ErrInvalidContextItem)
	}
	if i.ExtractedAt.IsZero() {
		return fmt.Errorf("%w: zero extraction time", ErrInvalidContextItem)
	}
	return nil
}

// RawTurn is one user turn as seen by the pipeline. Keywords are always
// produced locally so keyword similarity never depends on the language
// collaborator; the collaborator may replace them with better ones.
type RawTurn struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	Text      string    `json:"text"`
	Keywords  []string  `json:"keywords,omitempty"`
	Sentiment string    `json:"sentiment,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Signal is one typed extraction result from the language collaborator.
// Confidence 0 means "not detected" and must be dropped, not stored.
type Signal struct {
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
}

// SignalBundle is the full output of one extraction call.
type SignalBundle struct {
	Signals   map[ContextType]Signal `json:"signals"`
	Keywords  []string               `json:"keywords,omitempty"`
	Sentiment string                 `json:"sentiment,omitempty"`
}

// SimilarityResult compares two turns. Ephemeral, produced on demand.
// SemanticScore is nil when the semantic signal was gated out or
// unavailable; CombinedScore then equals KeywordScore.
type SimilarityResult struct {
	TurnA            string   `json:"turn_a"`
	TurnB            string   `json:"turn_b"`
	KeywordScore     float64  `json:"keyword_score"`
	SemanticScore    *float64 `json:"semantic_score,omitempty"`
	CombinedScore    float64  `json:"combined_score"`
	WithinTimeWindow bool     `json:"within_time_window"`
}
