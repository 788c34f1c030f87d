package engine

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/lily-ai/lily/internal/emotion"
	"github.com/lily-ai/lily/internal/memory"
	"github.com/lily-ai/lily/internal/model"
	"github.com/lily-ai/lily/internal/retrieval"
)

type captureIndex struct {
	snippets []string
	added    [][2]string
	addErr   error
	lastTopK int
}

func (c *captureIndex) Query(_ context.Context, _ string, topK int) []string {
	c.lastTopK = topK
	return c.snippets
}

func (c *captureIndex) AddTurn(_ context.Context, userText, assistantText string) error {
	if c.addErr != nil {
		return c.addErr
	}
	c.added = append(c.added, [2]string{userText, assistantText})
	return nil
}

func (c *captureIndex) Close() error { return nil }

type brokenStore struct {
	memory.Store
}

func (brokenStore) SaveTurn(context.Context, memory.Turn) error {
	return errors.New("disk on fire")
}

func newTestEngine(adapter model.Adapter, store memory.Store, index retrieval.Index, opts Options) *Engine {
	return New(emotion.NewMachine(), store, index, adapter, nil, "You are Lily, a warm companion.", opts)
}

func TestGenerateResponsePersistsAndIndexes(t *testing.T) {
	adapter := model.NewMockAdapter()
	adapter.SetReply("<think>plotting</think>I'm so glad to hear from you!")
	store := memory.NewInMemoryStore()
	index := &captureIndex{}
	e := newTestEngine(adapter, store, index, Options{})

	reply, emo, err := e.GenerateResponse(context.Background(), "u1", "I love this")
	if err != nil {
		t.Fatalf("GenerateResponse() error = %v", err)
	}
	if reply != "I'm so glad to hear from you!" {
		t.Fatalf("reply = %q, want sanitized completion", reply)
	}
	if emo != emotion.Happy {
		t.Fatalf("emotion = %q, want %q", emo, emotion.Happy)
	}

	turns, _ := store.RecentTurns(context.Background(), "u1", 10)
	if len(turns) != 2 {
		t.Fatalf("persisted %d turns, want 2", len(turns))
	}
	if turns[0].Role != memory.RoleUser || turns[1].Role != memory.RoleAssistant {
		t.Fatalf("roles = %q,%q, want user then assistant", turns[0].Role, turns[1].Role)
	}
	if turns[1].Emotion != emotion.Happy {
		t.Fatalf("assistant turn emotion = %q, want %q", turns[1].Emotion, emotion.Happy)
	}

	if len(index.added) != 1 {
		t.Fatalf("indexed %d pairs, want 1", len(index.added))
	}

	emotions, _ := store.RecentEmotions(context.Background(), "u1", 10)
	if len(emotions) != 1 {
		t.Fatalf("persisted %d emotional states, want 1", len(emotions))
	}
}

func TestGenerateResponseTimeoutFallback(t *testing.T) {
	adapter := model.NewMockAdapter()
	adapter.SetError(model.ErrTimeout)
	store := memory.NewInMemoryStore()
	index := &captureIndex{}
	e := newTestEngine(adapter, store, index, Options{})

	reply, emo, err := e.GenerateResponse(context.Background(), "u1", "Hola")
	if err != nil {
		t.Fatalf("GenerateResponse() error = %v, timeout must not surface", err)
	}
	if reply != timeoutReply {
		t.Fatalf("reply = %q, want fixed timeout apology", reply)
	}
	if emo != emotion.Worried {
		t.Fatalf("emotion = %q, want %q", emo, emotion.Worried)
	}

	turns, _ := store.RecentTurns(context.Background(), "u1", 10)
	if len(turns) != 2 {
		t.Fatalf("persisted %d turns, want fallback turn persisted too", len(turns))
	}
	if len(index.added) != 0 {
		t.Fatalf("fallback reply was indexed, want skipped")
	}
}

func TestGenerateResponseBadStatusFallback(t *testing.T) {
	adapter := model.NewMockAdapter()
	adapter.SetError(&model.BadStatusError{Code: 503})
	e := newTestEngine(adapter, memory.NewInMemoryStore(), &captureIndex{}, Options{})

	reply, emo, err := e.GenerateResponse(context.Background(), "u1", "hi")
	if err != nil {
		t.Fatalf("GenerateResponse() error = %v", err)
	}
	if !strings.Contains(reply, "backend status 503") {
		t.Fatalf("reply = %q, want short diagnostic note", reply)
	}
	if emo != emotion.Worried {
		t.Fatalf("emotion = %q, want %q", emo, emotion.Worried)
	}
}

func TestGenerateResponseIndexFallbackConfigurable(t *testing.T) {
	adapter := model.NewMockAdapter()
	adapter.SetError(model.ErrTimeout)
	index := &captureIndex{}
	e := newTestEngine(adapter, memory.NewInMemoryStore(), index, Options{IndexFallbackReplies: true})

	if _, _, err := e.GenerateResponse(context.Background(), "u1", "hi"); err != nil {
		t.Fatalf("GenerateResponse() error = %v", err)
	}
	if len(index.added) != 1 {
		t.Fatalf("indexed %d pairs, want fallback indexed when configured", len(index.added))
	}
}

func TestGenerateResponseWithoutRetrieval(t *testing.T) {
	adapter := model.NewMockAdapter()
	e := newTestEngine(adapter, memory.NewInMemoryStore(), retrieval.Disabled{}, Options{})

	reply, _, err := e.GenerateResponse(context.Background(), "u1", "hi")
	if err != nil {
		t.Fatalf("GenerateResponse() error = %v", err)
	}
	if reply == "" {
		t.Fatalf("reply empty, want a response without retrieval")
	}

	calls := adapter.Calls()
	if len(calls) != 1 {
		t.Fatalf("adapter calls = %d, want 1", len(calls))
	}
	if strings.Contains(calls[0][0].Content, "RELEVANT PAST MOMENTS") {
		t.Fatalf("system segment includes retrieval header with no snippets")
	}
}

func TestGenerateResponseMemoryFailureSurfaces(t *testing.T) {
	adapter := model.NewMockAdapter()
	e := newTestEngine(adapter, brokenStore{Store: memory.NewInMemoryStore()}, &captureIndex{}, Options{})

	_, _, err := e.GenerateResponse(context.Background(), "u1", "hi")
	if err == nil {
		t.Fatalf("GenerateResponse() error = nil, want surfaced memory write failure")
	}
}

func TestGenerateResponseRedactsPII(t *testing.T) {
	adapter := model.NewMockAdapter()
	store := memory.NewInMemoryStore()
	e := newTestEngine(adapter, store, &captureIndex{}, Options{})

	if _, _, err := e.GenerateResponse(context.Background(), "u1", "write to me at someone@example.com"); err != nil {
		t.Fatalf("GenerateResponse() error = %v", err)
	}

	turns, _ := store.RecentTurns(context.Background(), "u1", 10)
	if strings.Contains(turns[0].Content, "someone@example.com") {
		t.Fatalf("user turn stored unredacted: %q", turns[0].Content)
	}
	if !turns[0].PIIRedacted {
		t.Fatalf("PIIRedacted = false, want true")
	}
}

func TestExplicitZeroOptionsReachBackends(t *testing.T) {
	adapter := model.NewMockAdapter()
	index := &captureIndex{lastTopK: -1}
	e := newTestEngine(adapter, memory.NewInMemoryStore(), index, Options{
		RetrievalTopK: 0,
		Temperature:   0,
		TopP:          0,
		TopK:          0,
	})

	if _, _, err := e.GenerateResponse(context.Background(), "u1", "hi"); err != nil {
		t.Fatalf("GenerateResponse() error = %v", err)
	}

	if index.lastTopK != 0 {
		t.Fatalf("index queried with topK %d, want the configured 0", index.lastTopK)
	}
	opts := adapter.LastOptions()
	if opts.Temperature != 0 || opts.TopP != 0 || opts.TopK != 0 {
		t.Fatalf("sampling options = %+v, want explicit zeros preserved", opts)
	}
}

func TestNegativeOptionsRepaired(t *testing.T) {
	opts := Options{
		ContextTurns:  -1,
		RetrievalTopK: -3,
		Temperature:   -0.5,
		TopP:          -1,
		TopK:          -2,
	}
	opts.applyDefaults()

	if opts.ContextTurns != 6 || opts.PromptCharBudget != 6000 || opts.EmotionWindow != 10 {
		t.Fatalf("structural defaults = %+v", opts)
	}
	if opts.RetrievalTopK != 0 || opts.Temperature != 0 || opts.TopP != 0 || opts.TopK != 0 {
		t.Fatalf("negative knobs not clamped: %+v", opts)
	}
}
