package useragent

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	browser "github.com/itzngga/fake-useragent"
	"go.uber.org/zap"
)

type Entry struct {
	SessionName string `json:"session_name"`
	UserAgent   string `json:"user_agent"`
}

// Cache pins one browser identity per session across restarts. The file is
// read once; new sessions are appended and the whole list rewritten.
type Cache struct {
	path     string
	logger   *zap.Logger
	generate func() string

	mu      sync.Mutex
	entries []Entry
}

type Option func(*Cache)

// WithGenerator replaces the fake-useragent source, mostly for tests.
func WithGenerator(generate func() string) Option {
	return func(c *Cache) {
		c.generate = generate
	}
}

// Load never fails on a missing or corrupt file; both start an empty cache.
func Load(path string, logger *zap.Logger, opts ...Option) *Cache {
	c := &Cache{
		path:     path,
		logger:   logger,
		generate: browser.Chrome,
	}
	for _, opt := range opts {
		opt(c)
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		logger.Warn("User agents file not found, creating", zap.String("path", path))
		return c
	case err != nil:
		logger.Warn("Failed to read user agents file", zap.String("path", path), zap.Error(err))
		return c
	}

	if err := json.Unmarshal(data, &c.entries); err != nil {
		logger.Warn("User agents file is empty or corrupted", zap.String("path", path), zap.Error(err))
		c.entries = nil
	}
	return c
}

// Get returns the stored user agent for session, generating and persisting
// one the first time the session is seen.
func (c *Cache) Get(session string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, e := range c.entries {
		if e.SessionName == session {
			return e.UserAgent, nil
		}
	}

	ua := c.generate()
	c.entries = append(c.entries, Entry{SessionName: session, UserAgent: ua})
	if err := c.save(); err != nil {
		return ua, err
	}

	c.logger.Info("User agent saved successfully", zap.String("session", session))
	return ua, nil
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) save() error {
	data, err := json.MarshalIndent(c.entries, "", "    ")
	if err != nil {
		return fmt.Errorf("encode user agents: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		return fmt.Errorf("write user agents: %w", err)
	}
	return nil
}
