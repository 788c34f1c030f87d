package memory

import (
	"context"
	"log"
	"time"

	"github.com/lily-ai/lily/internal/reliability"
)

// retryingStore retries each failed write exactly once before surfacing the
// error. Losing a turn silently would corrupt the history, so write failures
// that survive the retry are returned to the caller.
type retryingStore struct {
	Store
	backoff time.Duration
	onRetry func(op string)
}

// WithWriteRetry wraps a store so transient write failures get one retry.
func WithWriteRetry(inner Store, onRetry func(op string)) Store {
	return &retryingStore{
		Store:   inner,
		backoff: reliability.ExponentialBackoff(0, 50*time.Millisecond, time.Second),
		onRetry: onRetry,
	}
}

func (s *retryingStore) SaveTurn(ctx context.Context, turn Turn) error {
	err := s.Store.SaveTurn(ctx, turn)
	if err == nil || ctx.Err() != nil {
		return err
	}
	log.Printf("memory: save turn failed, retrying once: %v", err)
	s.noteRetry("save_turn")
	time.Sleep(s.backoff)
	return s.Store.SaveTurn(ctx, turn)
}

func (s *retryingStore) SaveEmotion(ctx context.Context, record EmotionRecord) error {
	err := s.Store.SaveEmotion(ctx, record)
	if err == nil || ctx.Err() != nil {
		return err
	}
	log.Printf("memory: save emotional state failed, retrying once: %v", err)
	s.noteRetry("save_emotion")
	time.Sleep(s.backoff)
	return s.Store.SaveEmotion(ctx, record)
}

func (s *retryingStore) noteRetry(op string) {
	if s.onRetry != nil {
		s.onRetry(op)
	}
}
