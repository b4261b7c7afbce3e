package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Queries is the Postgres Store.
type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

const createPlayer = `
INSERT INTO players (id, username, password_hash, avatar, guest)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, username, password_hash, avatar, guest, created_at`

func (q *Queries) CreatePlayer(ctx context.Context, p Player) (Player, error) {
	row := q.db.QueryRow(ctx, createPlayer, p.ID, p.Username, p.PasswordHash, p.Avatar, p.Guest)
	out, err := scanPlayer(row)
	if err != nil {
		if isDuplicateKeyError(err) {
			return Player{}, ErrConflict
		}
		return Player{}, fmt.Errorf("create player: %w", err)
	}
	return out, nil
}

const getPlayer = `
SELECT id, username, password_hash, avatar, guest, created_at
FROM players WHERE id = $1`

func (q *Queries) GetPlayer(ctx context.Context, id string) (Player, error) {
	p, err := scanPlayer(q.db.QueryRow(ctx, getPlayer, id))
	if err != nil {
		return Player{}, notFound(err, "get player")
	}
	return p, nil
}

const getPlayerByUsername = `
SELECT id, username, password_hash, avatar, guest, created_at
FROM players WHERE lower(username) = lower($1)`

func (q *Queries) GetPlayerByUsername(ctx context.Context, username string) (Player, error) {
	p, err := scanPlayer(q.db.QueryRow(ctx, getPlayerByUsername, username))
	if err != nil {
		return Player{}, notFound(err, "get player by username")
	}
	return p, nil
}

const updatePlayerAvatar = `UPDATE players SET avatar = $2 WHERE id = $1`

func (q *Queries) UpdatePlayerAvatar(ctx context.Context, id, avatar string) error {
	tag, err := q.db.Exec(ctx, updatePlayerAvatar, id, avatar)
	if err != nil {
		return fmt.Errorf("update avatar: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const getProgress = `
SELECT player_id, current_level, highest_level, total_completions, best_time_ms, sound_enabled, updated_at
FROM progress WHERE player_id = $1`

func (q *Queries) GetProgress(ctx context.Context, playerID string) (Progress, error) {
	var p Progress
	err := q.db.QueryRow(ctx, getProgress, playerID).Scan(
		&p.PlayerID, &p.CurrentLevel, &p.HighestLevel, &p.TotalCompletions, &p.BestTimeMS, &p.SoundEnabled, &p.UpdatedAt,
	)
	if err != nil {
		return Progress{}, notFound(err, "get progress")
	}
	return p, nil
}

const upsertProgress = `
INSERT INTO progress (player_id, current_level, highest_level, total_completions, best_time_ms, sound_enabled, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, now())
ON CONFLICT (player_id) DO UPDATE SET
    current_level = EXCLUDED.current_level,
    highest_level = EXCLUDED.highest_level,
    total_completions = EXCLUDED.total_completions,
    best_time_ms = EXCLUDED.best_time_ms,
    sound_enabled = EXCLUDED.sound_enabled,
    updated_at = now()`

func (q *Queries) UpsertProgress(ctx context.Context, p Progress) error {
	_, err := q.db.Exec(ctx, upsertProgress,
		p.PlayerID, p.CurrentLevel, p.HighestLevel, p.TotalCompletions, p.BestTimeMS, p.SoundEnabled)
	if err != nil {
		return fmt.Errorf("upsert progress: %w", err)
	}
	return nil
}

const upsertLeaderboardEntry = `
INSERT INTO leaderboard (player_id, username, avatar, score, completion_time_ms, updated_at)
VALUES ($1, $2, $3, $4, $5, now())
ON CONFLICT (player_id) DO UPDATE SET
    username = EXCLUDED.username,
    avatar = EXCLUDED.avatar,
    score = EXCLUDED.score,
    completion_time_ms = EXCLUDED.completion_time_ms,
    updated_at = now()`

func (q *Queries) UpsertLeaderboardEntry(ctx context.Context, e LeaderboardEntry) error {
	_, err := q.db.Exec(ctx, upsertLeaderboardEntry, e.PlayerID, e.Username, e.Avatar, e.Score, e.CompletionTimeMS)
	if err != nil {
		return fmt.Errorf("upsert leaderboard entry: %w", err)
	}
	return nil
}

const listLeaderboard = `
SELECT player_id, username, avatar, score, completion_time_ms, updated_at
FROM leaderboard
ORDER BY score DESC, completion_time_ms ASC, username ASC
LIMIT $1`

func (q *Queries) ListLeaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	rows, err := q.db.Query(ctx, listLeaderboard, limit)
	if err != nil {
		return nil, fmt.Errorf("list leaderboard: %w", err)
	}
	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (LeaderboardEntry, error) {
		var e LeaderboardEntry
		err := row.Scan(&e.PlayerID, &e.Username, &e.Avatar, &e.Score, &e.CompletionTimeMS, &e.UpdatedAt)
		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("list leaderboard: %w", err)
	}
	return entries, nil
}

const createAchievement = `
INSERT INTO achievements (id, player_id, level, time_ms, title, body)
VALUES ($1, $2, $3, $4, $5, $6)`

func (q *Queries) CreateAchievement(ctx context.Context, a Achievement) error {
	_, err := q.db.Exec(ctx, createAchievement, a.ID, a.PlayerID, a.Level, a.TimeMS, a.Title, a.Body)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrConflict
		}
		return fmt.Errorf("create achievement: %w", err)
	}
	return nil
}

const listAchievements = `
SELECT id, player_id, level, time_ms, title, body, created_at
FROM achievements WHERE player_id = $1
ORDER BY created_at DESC
LIMIT $2`

func (q *Queries) ListAchievements(ctx context.Context, playerID string, limit int) ([]Achievement, error) {
	rows, err := q.db.Query(ctx, listAchievements, playerID, limit)
	if err != nil {
		return nil, fmt.Errorf("list achievements: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Achievement, error) {
		var a Achievement
		err := row.Scan(&a.ID, &a.PlayerID, &a.Level, &a.TimeMS, &a.Title, &a.Body, &a.CreatedAt)
		return a, err
	})
	if err != nil {
		return nil, fmt.Errorf("list achievements: %w", err)
	}
	return out, nil
}

func scanPlayer(row pgx.Row) (Player, error) {
	var p Player
	err := row.Scan(&p.ID, &p.Username, &p.PasswordHash, &p.Avatar, &p.Guest, &p.CreatedAt)
	return p, err
}

func notFound(err error, op string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}

var _ Store = (*Queries)(nil)
