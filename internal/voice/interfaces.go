package voice

import (
	"context"
	"io"

	"github.com/lily-ai/lily/internal/emotion"
)

// Synthesizer renders final reply text as an audio file and returns the URL
// it is served under. The core never inspects codec internals.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, emo emotion.Emotion) (audioURL string, err error)
}

// Transcriber turns captured audio into final transcribed text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio io.Reader) (string, error)
}
