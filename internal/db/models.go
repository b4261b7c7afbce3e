package db

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
)

type Player struct {
	ID           string
	Username     string
	PasswordHash string
	Avatar       string
	Guest        bool
	CreatedAt    time.Time
}

type Progress struct {
	PlayerID         string
	CurrentLevel     int
	HighestLevel     int
	TotalCompletions int
	BestTimeMS       int64
	SoundEnabled     bool
	UpdatedAt        time.Time
}

type LeaderboardEntry struct {
	PlayerID         string
	Username         string
	Avatar           string
	Score            int
	CompletionTimeMS int64
	UpdatedAt        time.Time
}

type Achievement struct {
	ID        string
	PlayerID  string
	Level     int
	TimeMS    int64
	Title     string
	Body      string
	CreatedAt time.Time
}

// Store is implemented by Queries (Postgres) and Memory.
type Store interface {
	CreatePlayer(ctx context.Context, p Player) (Player, error)
	GetPlayer(ctx context.Context, id string) (Player, error)
	GetPlayerByUsername(ctx context.Context, username string) (Player, error)
	UpdatePlayerAvatar(ctx context.Context, id, avatar string) error

	GetProgress(ctx context.Context, playerID string) (Progress, error)
	UpsertProgress(ctx context.Context, p Progress) error

	// UpsertLeaderboardEntry replaces the player's entry; the latest submission wins.
	UpsertLeaderboardEntry(ctx context.Context, e LeaderboardEntry) error
	// ListLeaderboard orders by score desc, completion time asc, username asc.
	ListLeaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error)

	CreateAchievement(ctx context.Context, a Achievement) error
	ListAchievements(ctx context.Context, playerID string, limit int) ([]Achievement, error)
}
