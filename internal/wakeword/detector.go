package wakeword

import (
	"strings"
	"sync"
)

// Detector spots the configured wake word in transcribed text. Audio
// capture lives outside the core; the detector only sees final transcripts.
type Detector struct {
	mu       sync.Mutex
	word     string
	enabled  bool
	onDetect func()
}

func NewDetector(word string, onDetect func()) *Detector {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" {
		word = "lily"
	}
	return &Detector{word: word, onDetect: onDetect}
}

func (d *Detector) Enable() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.enabled = true
}

func (d *Detector) Disable() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.enabled = false
}

func (d *Detector) Enabled() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.enabled
}

func (d *Detector) Word() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.word
}

// Detect reports whether the transcript contains the wake word. When the
// detector is enabled and the word is present, the trigger hook fires.
func (d *Detector) Detect(transcript string) bool {
	d.mu.Lock()
	enabled, word, hook := d.enabled, d.word, d.onDetect
	d.mu.Unlock()

	if !enabled {
		return false
	}

	found := false
	for _, w := range strings.Fields(strings.ToLower(transcript)) {
		if strings.Trim(w, ".,!?;:") == word {
			found = true
			break
		}
	}
	if found && hook != nil {
		hook()
	}
	return found
}
