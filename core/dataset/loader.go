package dataset

import (
	"fmt"
	"log/slog"
	"path/filepath"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Loader caches parsed tables by absolute path so analyses sharing a dataset
// parse it once.
type Loader struct {
	cache  *lru.Cache[string, *Table]
	logger *slog.Logger
}

// NewLoader creates a Loader holding at most size parsed tables.
func NewLoader(size int, logger *slog.Logger) (*Loader, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cache, err := lru.New[string, *Table](size)
	if err != nil {
		return nil, fmt.Errorf("create dataset cache: %w", err)
	}
	return &Loader{cache: cache, logger: logger}, nil
}

// Load returns the table at path, reading it on the first request and
// serving the cached parse afterwards.
func (l *Loader) Load(path string) (*Table, error) {
	key := path
	if abs, err := filepath.Abs(path); err == nil {
		key = abs
	}

	if t, ok := l.cache.Get(key); ok {
		l.logger.Debug("dataset cache hit", "path", key)
		return t, nil
	}

	t, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	l.cache.Add(key, t)
	l.logger.Debug("dataset loaded", "path", key, "rows", t.Rows(), "columns", len(t.Names()))
	return t, nil
}

// Len reports how many tables are currently cached.
func (l *Loader) Len() int { return l.cache.Len() }
