// Package notify carries user-visible notifications from the stores back to the
// HTTP response. Every notification is also logged.
package notify

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelError   Level = "error"
)

type Notification struct {
	Level   Level  `json:"level"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

type ctxKey struct{}

type collector struct {
	mu    sync.Mutex
	items []Notification
}

// WithCollector returns a context that accumulates notifications until Drain is called.
func WithCollector(ctx context.Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, &collector{})
}

// Send logs n and records it on the context's collector, if any.
func Send(ctx context.Context, n Notification) {
	entry := log.WithFields(log.Fields{"title": n.Title, "level": n.Level})
	if n.Level == LevelError {
		entry.Warn(n.Message)
	} else {
		entry.Debug(n.Message)
	}

	if c, ok := ctx.Value(ctxKey{}).(*collector); ok {
		c.mu.Lock()
		c.items = append(c.items, n)
		c.mu.Unlock()
	}
}

func Success(ctx context.Context, title, message string) {
	Send(ctx, Notification{Level: LevelSuccess, Title: title, Message: message})
}

func Info(ctx context.Context, title, message string) {
	Send(ctx, Notification{Level: LevelInfo, Title: title, Message: message})
}

func Error(ctx context.Context, title, message string) {
	Send(ctx, Notification{Level: LevelError, Title: title, Message: message})
}

// Drain returns and clears the collected notifications. It never returns nil.
func Drain(ctx context.Context) []Notification {
	c, ok := ctx.Value(ctxKey{}).(*collector)
	if !ok {
		return []Notification{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.items
	c.items = nil
	if out == nil {
		out = []Notification{}
	}
	return out
}
