package engine

import (
	"log"
	"os"
	"strings"
)

// LoadPersona reads the static persona instructions from disk. A missing or
// unreadable file degrades to an empty persona: the companion keeps talking,
// just without her character sheet.
func LoadPersona(path string) string {
	if strings.TrimSpace(path) == "" {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("engine: persona file %q unavailable, continuing without persona: %v", path, err)
		return ""
	}
	return strings.TrimSpace(string(data))
}
