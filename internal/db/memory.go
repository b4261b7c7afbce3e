package db

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// Memory is a Store held in process memory. It is the fallback when no
// database is configured or reachable.
type Memory struct {
	mu           sync.RWMutex
	players      map[string]Player           // id -> player
	usernames    map[string]string           // lower(username) -> id
	progress     map[string]Progress         // player id -> progress
	leaderboard  map[string]LeaderboardEntry // player id -> entry
	achievements []Achievement
	now          func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		players:     make(map[string]Player),
		usernames:   make(map[string]string),
		progress:    make(map[string]Progress),
		leaderboard: make(map[string]LeaderboardEntry),
		now:         time.Now,
	}
}

func (m *Memory) CreatePlayer(_ context.Context, p Player) (Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(p.Username)
	if _, taken := m.usernames[key]; taken {
		return Player{}, ErrConflict
	}
	if _, taken := m.players[p.ID]; taken {
		return Player{}, ErrConflict
	}
	p.CreatedAt = m.now()
	m.players[p.ID] = p
	m.usernames[key] = p.ID
	return p, nil
}

func (m *Memory) GetPlayer(_ context.Context, id string) (Player, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.players[id]
	if !ok {
		return Player{}, ErrNotFound
	}
	return p, nil
}

func (m *Memory) GetPlayerByUsername(_ context.Context, username string) (Player, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.usernames[strings.ToLower(username)]
	if !ok {
		return Player{}, ErrNotFound
	}
	return m.players[id], nil
}

func (m *Memory) UpdatePlayerAvatar(_ context.Context, id, avatar string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.players[id]
	if !ok {
		return ErrNotFound
	}
	p.Avatar = avatar
	m.players[id] = p
	return nil
}

func (m *Memory) GetProgress(_ context.Context, playerID string) (Progress, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.progress[playerID]
	if !ok {
		return Progress{}, ErrNotFound
	}
	return p, nil
}

func (m *Memory) UpsertProgress(_ context.Context, p Progress) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.UpdatedAt = m.now()
	m.progress[p.PlayerID] = p
	return nil
}

func (m *Memory) UpsertLeaderboardEntry(_ context.Context, e LeaderboardEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.UpdatedAt = m.now()
	m.leaderboard[e.PlayerID] = e
	return nil
}

func (m *Memory) ListLeaderboard(_ context.Context, limit int) ([]LeaderboardEntry, error) {
	m.mu.RLock()
	entries := make([]LeaderboardEntry, 0, len(m.leaderboard))
	for _, e := range m.leaderboard {
		entries = append(entries, e)
	}
	m.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.CompletionTimeMS != b.CompletionTimeMS {
			return a.CompletionTimeMS < b.CompletionTimeMS
		}
		return a.Username < b.Username
	})
	if limit >= 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (m *Memory) CreateAchievement(_ context.Context, a Achievement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.achievements {
		if existing.ID == a.ID {
			return ErrConflict
		}
	}
	a.CreatedAt = m.now()
	m.achievements = append(m.achievements, a)
	return nil
}

func (m *Memory) ListAchievements(_ context.Context, playerID string, limit int) ([]Achievement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Achievement
	for i := len(m.achievements) - 1; i >= 0 && (limit < 0 || len(out) < limit); i-- {
		if a := m.achievements[i]; a.PlayerID == playerID {
			out = append(out, a)
		}
	}
	return out, nil
}

var _ Store = (*Memory)(nil)
