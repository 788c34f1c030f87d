package voice

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/lily-ai/lily/internal/emotion"
)

// MockSynthesizer writes short silent WAV files so the audio lifecycle can
// be exercised without a real TTS backend.
type MockSynthesizer struct {
	files *FileStore
}

func NewMockSynthesizer(files *FileStore) *MockSynthesizer {
	return &MockSynthesizer{files: files}
}

func (m *MockSynthesizer) Synthesize(_ context.Context, text string, _ emotion.Emotion) (string, error) {
	const sampleRate = 16000
	// Roughly 60ms of silence per word keeps file size proportional to text.
	words := len(strings.Fields(text))
	if words == 0 {
		words = 1
	}
	pcm := make([]byte, words*sampleRate*2*60/1000)

	name := fmt.Sprintf("lily-%s.wav", uuid.NewString())
	if err := m.files.Save(name, encodeWAVPCM16LE(pcm, sampleRate)); err != nil {
		return "", fmt.Errorf("write synthesized audio: %w", err)
	}
	return "/api/audio/" + name, nil
}

// MockTranscriber answers with a fixed transcript, for dev and tests.
type MockTranscriber struct {
	Text string
}

func NewMockTranscriber() *MockTranscriber {
	return &MockTranscriber{Text: "hello lily"}
}

func (m *MockTranscriber) Transcribe(_ context.Context, audio io.Reader) (string, error) {
	if _, err := io.Copy(io.Discard, audio); err != nil {
		return "", fmt.Errorf("read audio: %w", err)
	}
	return m.Text, nil
}
