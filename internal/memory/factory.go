package memory

import (
	"context"
	"fmt"
	"log"
	"strings"
)

// NewStore selects the persistence backend from the database URL. A blank
// URL keeps conversation history in process, which suits local runs where
// losing memory on restart is acceptable; anything else must be a postgres
// URL so the companion's memory survives restarts.
func NewStore(ctx context.Context, databaseURL string) (Store, error) {
	url := strings.TrimSpace(databaseURL)
	if url == "" {
		log.Printf("memory: no database configured, history is in-process only")
		return NewInMemoryStore(), nil
	}
	if !strings.HasPrefix(url, "postgres://") && !strings.HasPrefix(url, "postgresql://") {
		return nil, fmt.Errorf("database URL must use the postgres:// or postgresql:// scheme")
	}
	return NewPostgresStore(ctx, url)
}
