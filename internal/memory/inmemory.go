package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryStore is a simple in-process memory store for local/dev use.
type InMemoryStore struct {
	mu       sync.RWMutex
	turns    map[string][]Turn
	emotions map[string][]EmotionRecord
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		turns:    make(map[string][]Turn),
		emotions: make(map[string][]EmotionRecord),
	}
}

func (s *InMemoryStore) SaveTurn(_ context.Context, turn Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if turn.ID == "" {
		turn.ID = uuid.NewString()
	}
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now().UTC()
	}
	s.turns[turn.UserID] = append(s.turns[turn.UserID], turn)
	return nil
}

func (s *InMemoryStore) SaveEmotion(_ context.Context, record EmotionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	s.emotions[record.UserID] = append(s.emotions[record.UserID], record)
	return nil
}

func (s *InMemoryStore) RecentTurns(_ context.Context, userID string, limit int) ([]Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	arr := s.turns[userID]
	if len(arr) == 0 {
		return nil, nil
	}
	if limit <= 0 || limit > len(arr) {
		limit = len(arr)
	}
	out := make([]Turn, 0, limit)
	for i := len(arr) - limit; i < len(arr); i++ {
		out = append(out, arr[i])
	}
	return out, nil
}

func (s *InMemoryStore) RecentEmotions(_ context.Context, userID string, limit int) ([]EmotionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	arr := s.emotions[userID]
	if len(arr) == 0 {
		return nil, nil
	}
	if limit <= 0 || limit > len(arr) {
		limit = len(arr)
	}
	out := make([]EmotionRecord, 0, limit)
	for i := len(arr) - limit; i < len(arr); i++ {
		out = append(out, arr[i])
	}
	return out, nil
}

func (s *InMemoryStore) ConversationStats(_ context.Context, userID string) (ConversationStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	arr := s.turns[userID]
	stats := ConversationStats{TurnCount: len(arr)}
	if len(arr) == 0 {
		return stats, nil
	}
	stats.FirstAt = arr[0].CreatedAt
	stats.LastAt = arr[len(arr)-1].CreatedAt
	for _, t := range arr {
		switch t.Role {
		case RoleUser:
			stats.UserTurns++
		case RoleAssistant:
			stats.AssistantTurns++
		}
	}
	return stats, nil
}

func (s *InMemoryStore) Close() error { return nil }
