//go:build integration

package testutil

import (
	"context"
	"sync"

	"github.com/clubhaus/backoffice/internal/domain"
)

// SentMessage is one captured outbound notification.
type SentMessage struct {
	UserID int64
	Text   string
	Items  []domain.PackItem
}

// RecorderGateway implements notify.Gateway and records every send.
type RecorderGateway struct {
	mu   sync.Mutex
	sent []SentMessage
}

func NewRecorderGateway() *RecorderGateway {
	return &RecorderGateway{}
}

func (g *RecorderGateway) SendText(_ context.Context, userID int64, text string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sent = append(g.sent, SentMessage{UserID: userID, Text: text})
	return nil
}

func (g *RecorderGateway) SendMediaGroup(_ context.Context, userID int64, items []domain.PackItem) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sent = append(g.sent, SentMessage{UserID: userID, Items: items})
	return nil
}

func (g *RecorderGateway) SendMedia(_ context.Context, userID int64, item domain.PackItem) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sent = append(g.sent, SentMessage{UserID: userID, Items: []domain.PackItem{item}})
	return nil
}

// Sent returns a copy of all captured messages.
func (g *RecorderGateway) Sent() []SentMessage {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]SentMessage, len(g.sent))
	copy(out, g.sent)
	return out
}

// Reset clears the capture buffer.
func (g *RecorderGateway) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sent = nil
}
