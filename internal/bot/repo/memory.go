package repo

import (
	"context"
	"sync"

	"github.com/chatgpt-twitter-bot/server/internal/bot/model"
)

// MemoryRepository keeps everything in process. Used when redis is disabled.
type MemoryRepository struct {
	mu           sync.RWMutex
	interactions map[string]model.Interaction
	since        string
	refreshToken string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{interactions: make(map[string]model.Interaction)}
}

func (m *MemoryRepository) PutInteraction(_ context.Context, mentionID string, in *model.Interaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *in
	cp.ResponseTweetIDs = append([]string(nil), in.ResponseTweetIDs...)
	m.interactions[mentionID] = cp
	return nil
}

func (m *MemoryRepository) GetInteraction(_ context.Context, mentionID string) (*model.Interaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	in, ok := m.interactions[mentionID]
	if !ok {
		return nil, nil
	}
	return &in, nil
}

func (m *MemoryRepository) SinceMentionID(context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.since, nil
}

func (m *MemoryRepository) SetSinceMentionID(_ context.Context, id string) error {
	m.mu.Lock()
	m.since = id
	m.mu.Unlock()
	return nil
}

func (m *MemoryRepository) RefreshToken(context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.refreshToken, nil
}

func (m *MemoryRepository) SetRefreshToken(_ context.Context, token string) error {
	m.mu.Lock()
	m.refreshToken = token
	m.mu.Unlock()
	return nil
}

var (
	_ model.InteractionRepository = (*MemoryRepository)(nil)
	_ model.StateRepository       = (*MemoryRepository)(nil)
)
