package memory

import (
	"context"
	"time"

	"github.com/lily-ai/lily/internal/emotion"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn stores a single user or assistant conversational turn.
type Turn struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	Role        string          `json:"role"`
	Content     string          `json:"content"`
	Emotion     emotion.Emotion `json:"emotion,omitempty"`
	PIIRedacted bool            `json:"pii_redacted"`
	CreatedAt   time.Time       `json:"created_at"`
}

// EmotionRecord is one entry in a user's emotional timeline.
type EmotionRecord struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Emotion   emotion.Emotion `json:"emotion"`
	Intensity float64         `json:"intensity"`
	Reason    string          `json:"reason"`
	CreatedAt time.Time       `json:"created_at"`
}

// ConversationStats aggregates a user's dialogue history for summarization.
type ConversationStats struct {
	TurnCount      int       `json:"turn_count"`
	UserTurns      int       `json:"user_turns"`
	AssistantTurns int       `json:"assistant_turns"`
	FirstAt        time.Time `json:"first_at"`
	LastAt         time.Time `json:"last_at"`
}

// Store persists and retrieves per-user conversational memory.
//
// Appends for a given user are atomic per call; reads never mutate state.
// RecentTurns and RecentEmotions return the most recent entries in
// chronological order, oldest first.
type Store interface {
	SaveTurn(ctx context.Context, turn Turn) error
	SaveEmotion(ctx context.Context, record EmotionRecord) error
	RecentTurns(ctx context.Context, userID string, limit int) ([]Turn, error)
	RecentEmotions(ctx context.Context, userID string, limit int) ([]EmotionRecord, error)
	ConversationStats(ctx context.Context, userID string) (ConversationStats, error)
	Close() error
}
