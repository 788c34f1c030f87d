package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/lily-ai/lily/internal/emotion"
	"github.com/lily-ai/lily/internal/memory"
	"github.com/lily-ai/lily/internal/model"
	"github.com/lily-ai/lily/internal/observability"
	"github.com/lily-ai/lily/internal/policy"
	"github.com/lily-ai/lily/internal/retrieval"
)

const (
	timeoutReply = "I'm sorry, my thoughts are taking too long right now... could you repeat that?"
	errorReply   = "I'm sorry, something went wrong on my side. Can we try again?"
)

// Options tune prompt assembly and model sampling. Zero is a meaningful
// setting for RetrievalTopK (no snippets) and for the sampling knobs, so
// those are honored as given; operational defaults live in config.
type Options struct {
	ContextTurns         int
	RetrievalTopK        int
	PromptCharBudget     int
	EmotionWindow        int
	Temperature          float64
	TopP                 float64
	TopK                 int
	IndexFallbackReplies bool
}

// applyDefaults repairs structurally invalid options only: a context window
// or prompt field of zero turns would make every prompt degenerate, while
// negative sampling values are clamped rather than guessed at.
func (o *Options) applyDefaults() {
	if o.ContextTurns <= 0 {
		o.ContextTurns = 6
	}
	if o.RetrievalTopK < 0 {
		o.RetrievalTopK = 0
	}
	if o.PromptCharBudget <= 0 {
		o.PromptCharBudget = 6000
	}
	if o.EmotionWindow <= 0 {
		o.EmotionWindow = 10
	}
	if o.Temperature < 0 {
		o.Temperature = 0
	}
	if o.TopP < 0 {
		o.TopP = 0
	}
	if o.TopK < 0 {
		o.TopK = 0
	}
}

// Engine is the conversational core: it fuses emotional state, recent
// dialogue, summaries, and retrieved snippets into one bounded prompt,
// calls the model, and folds the reply back into durable state.
type Engine struct {
	emotions *emotion.Machine
	store    memory.Store
	index    retrieval.Index
	adapter  model.Adapter
	metrics  *observability.Metrics
	persona  string
	opts     Options
}

func New(
	emotions *emotion.Machine,
	store memory.Store,
	index retrieval.Index,
	adapter model.Adapter,
	metrics *observability.Metrics,
	persona string,
	opts Options,
) *Engine {
	opts.applyDefaults()
	return &Engine{
		emotions: emotions,
		store:    store,
		index:    index,
		adapter:  adapter,
		metrics:  metrics,
		persona:  persona,
		opts:     opts,
	}
}

// EmotionState exposes the last-known emotional state for status queries.
// It is a best-effort cache; the authoritative value for any given turn is
// what GenerateResponse returned for that turn.
func (e *Engine) EmotionState() emotion.Record {
	return e.emotions.Current()
}

// GenerateResponse runs one full conversational turn for the user.
//
// The caller always receives a reply text and an emotion; model failures
// become canned apologetic replies. The only surfaced error is a memory
// turn-write failure that survived its retry, since losing a turn silently
// would corrupt the history.
func (e *Engine) GenerateResponse(ctx context.Context, userID, message string) (string, emotion.Emotion, error) {
	rec := e.emotions.Update(message)
	if e.metrics != nil {
		e.metrics.EmotionUpdates.WithLabelValues(string(rec.Emotion)).Inc()
	}

	// Writes finish even when the caller disconnects mid-turn, so memory
	// stays consistent with what the model actually saw and said.
	persistCtx := context.WithoutCancel(ctx)

	if err := e.store.SaveEmotion(persistCtx, memory.EmotionRecord{
		UserID:    userID,
		Emotion:   rec.Emotion,
		Intensity: rec.Intensity,
		Reason:    rec.Reason,
	}); err != nil {
		log.Printf("engine: persist emotional state for %s: %v", userID, err)
	}

	prompt := e.assemblePrompt(ctx, userID, message, rec)

	start := time.Now()
	raw, err := e.adapter.Complete(ctx, prompt, model.Options{
		Temperature: e.opts.Temperature,
		TopP:        e.opts.TopP,
		TopK:        e.opts.TopK,
	})
	if e.metrics != nil {
		e.metrics.ObserveModelLatency(time.Since(start))
	}

	reply := ""
	replyEmotion := rec.Emotion
	fallback := false
	outcome := "ok"

	switch {
	case err == nil:
		reply = Sanitize(raw)
	case errors.Is(err, model.ErrTimeout):
		log.Printf("engine: model timeout for %s: %v", userID, err)
		reply = timeoutReply
		replyEmotion = emotion.Worried
		fallback = true
		outcome = "model_timeout"
	default:
		log.Printf("engine: model failure for %s: %v", userID, err)
		reply = fmt.Sprintf("%s (%s)", errorReply, shortDiagnostic(err))
		replyEmotion = emotion.Worried
		fallback = true
		outcome = "model_error"
	}
	if e.metrics != nil {
		e.metrics.Turns.WithLabelValues(outcome).Inc()
	}

	redactedMessage, messageRedacted := policy.RedactPII(message)
	if saveErr := e.store.SaveTurn(persistCtx, memory.Turn{
		UserID:      userID,
		Role:        memory.RoleUser,
		Content:     redactedMessage,
		PIIRedacted: messageRedacted,
	}); saveErr != nil {
		return "", replyEmotion, fmt.Errorf("persist user turn: %w", saveErr)
	}
	if saveErr := e.store.SaveTurn(persistCtx, memory.Turn{
		UserID:  userID,
		Role:    memory.RoleAssistant,
		Content: reply,
		Emotion: replyEmotion,
	}); saveErr != nil {
		return "", replyEmotion, fmt.Errorf("persist assistant turn: %w", saveErr)
	}

	// Fallback replies carry no informational content worth indexing.
	if !fallback || e.opts.IndexFallbackReplies {
		if indexErr := e.index.AddTurn(persistCtx, redactedMessage, reply); indexErr != nil {
			log.Printf("engine: index turn for %s: %v", userID, indexErr)
		}
	}

	return reply, replyEmotion, nil
}

// ConversationSummary reports the digest of a user's dialogue history.
// Unknown users get an empty-history summary, never an error.
func (e *Engine) ConversationSummary(ctx context.Context, userID string) string {
	stats, err := e.store.ConversationStats(ctx, userID)
	if err != nil {
		log.Printf("engine: conversation stats for %s: %v", userID, err)
		return memory.ConversationSummary(memory.ConversationStats{})
	}
	return memory.ConversationSummary(stats)
}

// EmotionalSummary reports the digest of a user's emotional timeline.
func (e *Engine) EmotionalSummary(ctx context.Context, userID string) string {
	records, err := e.store.RecentEmotions(ctx, userID, e.opts.EmotionWindow)
	if err != nil {
		log.Printf("engine: recent emotions for %s: %v", userID, err)
		records = nil
	}
	return memory.EmotionalSummary(records)
}

// RecentContext returns the bounded chronological context window for a user.
func (e *Engine) RecentContext(ctx context.Context, userID string, limit int) ([]memory.Turn, error) {
	return e.store.RecentTurns(ctx, userID, limit)
}

func shortDiagnostic(err error) string {
	var bad *model.BadStatusError
	if errors.As(err, &bad) {
		return fmt.Sprintf("backend status %d", bad.Code)
	}
	return "connection trouble"
}
