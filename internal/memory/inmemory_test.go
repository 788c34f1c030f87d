package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/lily-ai/lily/internal/emotion"
)

func TestRecentTurnsBoundedAndChronological(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		if err := s.SaveTurn(ctx, Turn{UserID: "u1", Role: RoleUser, Content: fmt.Sprintf("msg %d", i)}); err != nil {
			t.Fatalf("SaveTurn() error = %v", err)
		}
	}

	got, err := s.RecentTurns(ctx, "u1", 4)
	if err != nil {
		t.Fatalf("RecentTurns() error = %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("len = %d, want 4", len(got))
	}
	for i, turn := range got {
		want := fmt.Sprintf("msg %d", 6+i)
		if turn.Content != want {
			t.Fatalf("turn[%d] = %q, want %q (oldest first)", i, turn.Content, want)
		}
	}
}

func TestRecentTurnsPrefixStableSuffix(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_ = s.SaveTurn(ctx, Turn{UserID: "u1", Role: RoleUser, Content: fmt.Sprintf("msg %d", i)})
	}
	before, _ := s.RecentTurns(ctx, "u1", 3)

	_ = s.SaveTurn(ctx, Turn{UserID: "u1", Role: RoleUser, Content: "msg 5"})
	after, _ := s.RecentTurns(ctx, "u1", 3)

	// The window slides but previously returned turns keep their order.
	if before[1].Content != after[0].Content || before[2].Content != after[1].Content {
		t.Fatalf("window not a stable suffix: before=%v after=%v", contents(before), contents(after))
	}
}

func TestRecentTurnsFewerThanLimit(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()
	_ = s.SaveTurn(ctx, Turn{UserID: "u1", Role: RoleUser, Content: "only one"})

	got, err := s.RecentTurns(ctx, "u1", 10)
	if err != nil {
		t.Fatalf("RecentTurns() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
}

func TestConcurrentSaveTurnLosesNothing(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	const n = 100
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := s.SaveTurn(ctx, Turn{UserID: "u1", Role: RoleUser, Content: fmt.Sprintf("msg %d", i)}); err != nil {
				t.Errorf("SaveTurn() error = %v", err)
			}
		}(i)
	}
	wg.Wait()

	got, err := s.RecentTurns(ctx, "u1", n)
	if err != nil {
		t.Fatalf("RecentTurns() error = %v", err)
	}
	if len(got) != n {
		t.Fatalf("history length = %d, want %d", len(got), n)
	}
	seen := make(map[string]bool, n)
	for _, turn := range got {
		if seen[turn.Content] {
			t.Fatalf("duplicate turn %q", turn.Content)
		}
		seen[turn.Content] = true
	}
}

func TestDifferentUsersIndependent(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	_ = s.SaveTurn(ctx, Turn{UserID: "u1", Role: RoleUser, Content: "for u1"})
	_ = s.SaveTurn(ctx, Turn{UserID: "u2", Role: RoleUser, Content: "for u2"})

	got, _ := s.RecentTurns(ctx, "u1", 10)
	if len(got) != 1 || got[0].Content != "for u1" {
		t.Fatalf("u1 history = %v, want only its own turn", contents(got))
	}
}

func TestConversationStats(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	_ = s.SaveTurn(ctx, Turn{UserID: "u1", Role: RoleUser, Content: "hi"})
	_ = s.SaveTurn(ctx, Turn{UserID: "u1", Role: RoleAssistant, Content: "hello", Emotion: emotion.Happy})
	_ = s.SaveTurn(ctx, Turn{UserID: "u1", Role: RoleUser, Content: "how are you"})

	stats, err := s.ConversationStats(ctx, "u1")
	if err != nil {
		t.Fatalf("ConversationStats() error = %v", err)
	}
	if stats.TurnCount != 3 || stats.UserTurns != 2 || stats.AssistantTurns != 1 {
		t.Fatalf("stats = %+v, want 3 turns (2 user, 1 assistant)", stats)
	}
	if stats.FirstAt.After(stats.LastAt) {
		t.Fatalf("FirstAt %v after LastAt %v", stats.FirstAt, stats.LastAt)
	}
}

func TestStatsForUnknownUserEmpty(t *testing.T) {
	s := NewInMemoryStore()
	stats, err := s.ConversationStats(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("ConversationStats() error = %v", err)
	}
	if stats.TurnCount != 0 {
		t.Fatalf("TurnCount = %d, want 0", stats.TurnCount)
	}
}

func TestReadsDoNotMutate(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()
	_ = s.SaveTurn(ctx, Turn{UserID: "u1", Role: RoleUser, Content: "hi"})

	first, _ := s.RecentTurns(ctx, "u1", 5)
	second, _ := s.RecentTurns(ctx, "u1", 5)
	if len(first) != len(second) || first[0].Content != second[0].Content {
		t.Fatalf("repeated reads differ: %v vs %v", contents(first), contents(second))
	}
}

func contents(turns []Turn) []string {
	out := make([]string, len(turns))
	for i, t := range turns {
		out[i] = t.Content
	}
	return out
}
