package engine

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/lily-ai/lily/internal/emotion"
	"github.com/lily-ai/lily/internal/model"
)

// assemblePrompt builds the full message list for one turn: a system segment
// (persona, emotional context, memory summaries, retrieved snippets), the
// recent dialogue in chronological order, and the new utterance last.
//
// The result stays within the configured character budget. Retrieval
// snippets are dropped first, then the oldest context turns; the persona
// segment and the current utterance are never truncated.
func (e *Engine) assemblePrompt(ctx context.Context, userID, message string, rec emotion.Record) []model.Message {
	turns, err := e.store.RecentTurns(ctx, userID, e.opts.ContextTurns)
	if err != nil {
		log.Printf("engine: recent turns for %s: %v", userID, err)
		turns = nil
	}

	conversationSummary := e.ConversationSummary(ctx, userID)
	emotionalSummary := e.EmotionalSummary(ctx, userID)
	snippets := e.index.Query(ctx, message, e.opts.RetrievalTopK)
	if e.metrics != nil {
		e.metrics.RetrievalSnippets.Observe(float64(len(snippets)))
	}

	for {
		system := e.systemSegment(rec, conversationSummary, emotionalSummary, snippets)
		size := len(system) + len(message)
		for _, t := range turns {
			size += len(t.Content)
		}
		if size <= e.opts.PromptCharBudget {
			messages := make([]model.Message, 0, len(turns)+2)
			messages = append(messages, model.Message{Role: "system", Content: system})
			for _, t := range turns {
				messages = append(messages, model.Message{Role: t.Role, Content: t.Content})
			}
			return append(messages, model.Message{Role: "user", Content: message})
		}

		switch {
		case len(snippets) > 0:
			snippets = snippets[:len(snippets)-1]
		case len(turns) > 0:
			turns = turns[1:]
		default:
			// Only the persona and the utterance remain; send as-is.
			messages := []model.Message{
				{Role: "system", Content: system},
				{Role: "user", Content: message},
			}
			return messages
		}
	}
}

func (e *Engine) systemSegment(rec emotion.Record, conversationSummary, emotionalSummary string, snippets []string) string {
	var b strings.Builder
	if e.persona != "" {
		b.WriteString(e.persona)
		b.WriteString("\n\n")
	}

	b.WriteString("CURRENT EMOTIONAL CONTEXT:\n")
	b.WriteString(emotion.ModifierFor(rec))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Your current emotion: %s (intensity: %.2f)\n", rec.Emotion, rec.Intensity)
	fmt.Fprintf(&b, "Reason: %s\n", rec.Reason)

	b.WriteString("\nCONVERSATION MEMORY:\n")
	b.WriteString(conversationSummary)
	b.WriteString("\n")
	b.WriteString(emotionalSummary)
	b.WriteString("\n")

	if len(snippets) > 0 {
		b.WriteString("\nRELEVANT PAST MOMENTS:\n")
		for _, s := range snippets {
			b.WriteString(s)
			b.WriteString("\n")
		}
	}

	return b.String()
}
