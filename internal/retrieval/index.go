package retrieval

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	chromem "github.com/philippgille/chromem-go"
)

// Index is long-term semantic recall over past conversation turns.
//
// Retrieval is best-effort: Query never fails the caller and returns an
// empty result on any backend problem. AddTurn errors are reported so the
// orchestrator can log them, but they must not fail the overall turn.
type Index interface {
	Query(ctx context.Context, text string, topK int) []string
	AddTurn(ctx context.Context, userText, assistantText string) error
	Close() error
}

// Embedder turns text into a vector for similarity search.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Disabled is the explicit absent-capability variant of Index. The engine
// holds a Disabled index instead of nil when retrieval is unavailable.
type Disabled struct{}

func (Disabled) Query(context.Context, string, int) []string   { return nil }
func (Disabled) AddTurn(context.Context, string, string) error { return nil }
func (Disabled) Close() error                                  { return nil }

// queryTimeout bounds retrieval so a slow backend never stalls a turn.
const queryTimeout = 500 * time.Millisecond

// ChromemIndex stores turn pairs in an embedded chromem-go collection.
type ChromemIndex struct {
	col      *chromem.Collection
	embedder Embedder
}

func NewChromemIndex(embedder Embedder) (*ChromemIndex, error) {
	db := chromem.NewDB()
	col, err := db.CreateCollection("conversation_turns", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("create retrieval collection: %w", err)
	}
	return &ChromemIndex{col: col, embedder: embedder}, nil
}

// New builds the configured index, degrading to Disabled when retrieval is
// switched off or the backend cannot be initialized.
func New(enabled bool, embedder Embedder) Index {
	if !enabled {
		return Disabled{}
	}
	idx, err := NewChromemIndex(embedder)
	if err != nil {
		log.Printf("retrieval index unavailable, continuing without it: %v", err)
		return Disabled{}
	}
	return idx
}

func (x *ChromemIndex) AddTurn(ctx context.Context, userText, assistantText string) error {
	text := "User said: " + userText + "\nLily replied: " + assistantText

	embedding, err := x.embedder.Embed(ctx, text)
	if err != nil {
		return fmt.Errorf("embed turn: %w", err)
	}

	doc := chromem.Document{
		ID:        uuid.NewString(),
		Content:   text,
		Embedding: embedding,
		Metadata:  map[string]string{"created_at": time.Now().UTC().Format(time.RFC3339)},
	}
	if err := x.col.AddDocument(ctx, doc); err != nil {
		return fmt.Errorf("index turn: %w", err)
	}
	return nil
}

func (x *ChromemIndex) Query(ctx context.Context, text string, topK int) []string {
	if topK <= 0 {
		return nil
	}
	count := x.col.Count()
	if count == 0 {
		return nil
	}
	if topK > count {
		topK = count
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	embedding, err := x.embedder.Embed(ctx, text)
	if err != nil {
		log.Printf("retrieval: embed query failed: %v", err)
		return nil
	}

	results, err := x.col.QueryEmbedding(ctx, embedding, topK, nil, nil)
	if err != nil {
		log.Printf("retrieval: query failed: %v", err)
		return nil
	}

	snippets := make([]string, 0, len(results))
	for _, r := range results {
		snippets = append(snippets, r.Content)
	}
	return snippets
}

func (x *ChromemIndex) Close() error { return nil }
