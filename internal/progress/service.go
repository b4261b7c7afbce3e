// Package progress persists player progress, leaderboard entries and shared
// achievements on top of a db.Store.
package progress

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shapeflow/shapeflow/backend-go/internal/db"
	"github.com/shapeflow/shapeflow/backend-go/internal/document"
	"github.com/shapeflow/shapeflow/backend-go/internal/typeid"
)

var (
	ErrNotFound     = errors.New("player not found")
	ErrInvalidInput = errors.New("invalid input")
)

const (
	DefaultLeaderboardLimit = 10
	MaxLeaderboardLimit     = 100
	defaultMilestone        = 5
)

type Service struct {
	store     db.Store
	milestone int
	now       func() time.Time

	// completeMu serializes the progress read-modify-write in Complete.
	completeMu sync.Mutex
}

func NewService(store db.Store, milestone int) *Service {
	if milestone <= 0 {
		milestone = defaultMilestone
	}
	return &Service{store: store, milestone: milestone, now: time.Now}
}

func (s *Service) SaveProgress(ctx context.Context, p document.Progress) error {
	if p.CurrentLevel < 1 || p.HighestLevel < 0 || p.TotalCompletions < 0 || p.BestTime < 0 {
		return ErrInvalidInput
	}
	if p.HighestLevel < p.CurrentLevel {
		p.HighestLevel = p.CurrentLevel
	}

	err := s.store.UpsertProgress(ctx, db.Progress{
		PlayerID:         p.UserID,
		CurrentLevel:     p.CurrentLevel,
		HighestLevel:     p.HighestLevel,
		TotalCompletions: p.TotalCompletions,
		BestTimeMS:       p.BestTime,
		SoundEnabled:     p.SoundEnabled,
		UpdatedAt:        s.now(),
	})
	if err != nil {
		return fmt.Errorf("save progress: %w", err)
	}
	return nil
}

// LoadProgress returns nil when the player has never saved.
func (s *Service) LoadProgress(ctx context.Context, playerID string) (*document.Progress, error) {
	p, err := s.store.GetProgress(ctx, playerID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load progress: %w", err)
	}
	out := toProgress(p)
	return &out, nil
}

// HighestLevel returns the highest unlocked level, at least 1.
func (s *Service) HighestLevel(ctx context.Context, playerID string) (int, error) {
	p, err := s.LoadProgress(ctx, playerID)
	if err != nil {
		return 0, err
	}
	if p == nil || p.HighestLevel < 1 {
		return 1, nil
	}
	return p.HighestLevel, nil
}

// UpdateLeaderboard replaces the player's entry with the given score and time.
func (s *Service) UpdateLeaderboard(ctx context.Context, playerID string, score int, completionTime int64) error {
	if score < 0 || completionTime < 0 {
		return ErrInvalidInput
	}

	player, err := s.player(ctx, playerID)
	if err != nil {
		return err
	}

	err = s.store.UpsertLeaderboardEntry(ctx, db.LeaderboardEntry{
		PlayerID:         player.ID,
		Username:         player.Username,
		Avatar:           avatarOrDefault(player.Avatar),
		Score:            score,
		CompletionTimeMS: completionTime,
		UpdatedAt:        s.now(),
	})
	if err != nil {
		return fmt.Errorf("update leaderboard: %w", err)
	}
	return nil
}

// Leaderboard returns the top entries with 1-based ranks.
func (s *Service) Leaderboard(ctx context.Context, limit int) ([]document.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	if limit > MaxLeaderboardLimit {
		limit = MaxLeaderboardLimit
	}

	rows, err := s.store.ListLeaderboard(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list leaderboard: %w", err)
	}

	entries := make([]document.LeaderboardEntry, len(rows))
	for i, row := range rows {
		entries[i] = document.LeaderboardEntry{
			Rank:           i + 1,
			Username:       row.Username,
			Avatar:         avatarOrDefault(row.Avatar),
			Score:          row.Score,
			CompletionTime: row.CompletionTimeMS,
		}
	}
	return entries, nil
}

// UserProfile answers with the default profile for anonymous or unknown players.
func (s *Service) UserProfile(ctx context.Context, playerID string) (document.UserProfile, error) {
	profile := document.UserProfile{Username: document.DefaultUsername, Avatar: document.DefaultAvatar}
	if playerID == "" {
		return profile, nil
	}

	p, err := s.store.GetPlayer(ctx, playerID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return profile, nil
		}
		return profile, fmt.Errorf("get player: %w", err)
	}

	profile.Username = p.Username
	profile.Avatar = avatarOrDefault(p.Avatar)

	prog, err := s.store.GetProgress(ctx, playerID)
	switch {
	case err == nil:
		profile.Karma = prog.TotalCompletions
	case !errors.Is(err, db.ErrNotFound):
		return profile, fmt.Errorf("get progress: %w", err)
	}
	return profile, nil
}

// ShareAchievement stores a shareable post for a completed level.
func (s *Service) ShareAchievement(ctx context.Context, playerID string, level int, timeMS int64) (*document.Achievement, error) {
	if level < 1 || timeMS < 0 {
		return nil, ErrInvalidInput
	}
	if _, err := s.player(ctx, playerID); err != nil {
		return nil, err
	}

	a := db.Achievement{
		ID:        typeid.NewAchievementID(),
		PlayerID:  playerID,
		Level:     level,
		TimeMS:    timeMS,
		Title:     ShareTitle(level),
		Body:      ShareText(level, timeMS),
		CreatedAt: s.now(),
	}
	if err := s.store.CreateAchievement(ctx, a); err != nil {
		return nil, fmt.Errorf("create achievement: %w", err)
	}

	out := toAchievement(a)
	return &out, nil
}

func (s *Service) Achievements(ctx context.Context, playerID string, limit int) ([]document.Achievement, error) {
	if limit <= 0 || limit > MaxLeaderboardLimit {
		limit = MaxLeaderboardLimit
	}
	rows, err := s.store.ListAchievements(ctx, playerID, limit)
	if err != nil {
		return nil, fmt.Errorf("list achievements: %w", err)
	}
	out := make([]document.Achievement, len(rows))
	for i, a := range rows {
		out[i] = toAchievement(a)
	}
	return out, nil
}

// Completion is the result of recording a solved level.
type Completion struct {
	Progress  document.Progress `json:"progress"`
	Milestone bool              `json:"milestone"`
	ShareText string            `json:"shareText,omitempty"`
}

// Complete folds a solved level into the player's progress and leaderboard entry.
// The leaderboard score is the completed level.
func (s *Service) Complete(ctx context.Context, playerID string, level int, elapsed time.Duration) (*Completion, error) {
	if level < 1 {
		return nil, ErrInvalidInput
	}
	ms := elapsed.Milliseconds()

	s.completeMu.Lock()
	defer s.completeMu.Unlock()

	prev, err := s.store.GetProgress(ctx, playerID)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		return nil, fmt.Errorf("get progress: %w", err)
	}

	next := document.Progress{
		UserID:           playerID,
		CurrentLevel:     level + 1,
		HighestLevel:     max(prev.HighestLevel, level+1),
		TotalCompletions: prev.TotalCompletions + 1,
		BestTime:         bestTime(prev.BestTimeMS, ms),
		SoundEnabled:     prev.SoundEnabled,
	}
	if errors.Is(err, db.ErrNotFound) {
		next.SoundEnabled = true
	}

	if err := s.SaveProgress(ctx, next); err != nil {
		return nil, err
	}
	if err := s.UpdateLeaderboard(ctx, playerID, level, ms); err != nil {
		return nil, err
	}

	c := &Completion{Progress: next, Milestone: level%s.milestone == 0}
	if c.Milestone {
		c.ShareText = ShareText(level, ms)
	}
	return c, nil
}

// RecordCompletion records a solved level for a live run. Milestone levels are
// shared automatically.
func (s *Service) RecordCompletion(ctx context.Context, playerID string, level int, elapsed time.Duration) error {
	c, err := s.Complete(ctx, playerID, level, elapsed)
	if err != nil {
		return err
	}
	if c.Milestone {
		if _, err := s.ShareAchievement(ctx, playerID, level, elapsed.Milliseconds()); err != nil {
			return err
		}
		slog.Info("milestone shared", "player", playerID, "level", level)
	}
	return nil
}

func ShareTitle(level int) string {
	return fmt.Sprintf("🎉 I just completed Level %d in the SVG Puzzle Game!", level)
}

func ShareText(level int, timeMS int64) string {
	return fmt.Sprintf("I completed Level %d in %s! Can you beat my time?", level, FormatTime(timeMS))
}

// FormatTime renders milliseconds as m:ss.
func FormatTime(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	return fmt.Sprintf("%d:%02d", ms/60000, (ms%60000)/1000)
}

func bestTime(prev, cur int64) int64 {
	switch {
	case prev <= 0:
		return cur
	case cur <= 0:
		return prev
	default:
		return min(prev, cur)
	}
}

func (s *Service) player(ctx context.Context, playerID string) (db.Player, error) {
	p, err := s.store.GetPlayer(ctx, playerID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return db.Player{}, ErrNotFound
		}
		return db.Player{}, fmt.Errorf("get player: %w", err)
	}
	return p, nil
}

func avatarOrDefault(avatar string) string {
	if avatar == "" {
		return document.DefaultAvatar
	}
	return avatar
}

func toProgress(p db.Progress) document.Progress {
	return document.Progress{
		UserID:           p.PlayerID,
		CurrentLevel:     p.CurrentLevel,
		HighestLevel:     p.HighestLevel,
		TotalCompletions: p.TotalCompletions,
		BestTime:         p.BestTimeMS,
		SoundEnabled:     p.SoundEnabled,
	}
}

func toAchievement(a db.Achievement) document.Achievement {
	return document.Achievement{
		ID:        a.ID,
		Level:     a.Level,
		Time:      a.TimeMS,
		Title:     a.Title,
		Text:      a.Body,
		CreatedAt: a.CreatedAt.UTC().Format(time.RFC3339),
	}
}
