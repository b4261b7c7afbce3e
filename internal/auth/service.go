package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/shapeflow/shapeflow/backend-go/internal/db"
	"github.com/shapeflow/shapeflow/backend-go/internal/typeid"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrPlayerNotFound     = errors.New("player not found")
)

const (
	MinPasswordLength = 8
	bcryptCost        = 12
	tokenTTL          = 24 * time.Hour
)

type Service struct {
	store     db.Store
	jwtSecret []byte
	now       func() time.Time
}

func NewService(store db.Store, jwtSecret string) *Service {
	return &Service{
		store:     store,
		jwtSecret: []byte(jwtSecret),
		now:       time.Now,
	}
}

type AuthResult struct {
	Token  string `json:"token"`
	Player Player `json:"player"`
}

type Player struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
	Guest    bool   `json:"guest"`
}

func (s *Service) Register(ctx context.Context, username, password string) (*AuthResult, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	p, err := s.store.CreatePlayer(ctx, db.Player{
		ID:           typeid.NewPlayerID(),
		Username:     username,
		PasswordHash: string(hash),
	})
	if err != nil {
		if errors.Is(err, db.ErrConflict) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("create player: %w", err)
	}

	return s.result(p)
}

func (s *Service) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	p, err := s.store.GetPlayerByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get player: %w", err)
	}
	if p.Guest || p.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.result(p)
}

// Guest creates a password-less player with a generated name.
func (s *Service) Guest(ctx context.Context) (*AuthResult, error) {
	for attempt := 0; attempt < 3; attempt++ {
		p, err := s.store.CreatePlayer(ctx, db.Player{
			ID:       typeid.NewPlayerID(),
			Username: GuestName(),
			Guest:    true,
		})
		if errors.Is(err, db.ErrConflict) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("create guest: %w", err)
		}
		return s.result(p)
	}
	return nil, fmt.Errorf("create guest: %w", ErrUsernameTaken)
}

// GuestName returns a name of the form Player-xxxxxxxx.
func GuestName() string {
	return "Player-" + strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
}

func (s *Service) ValidateToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return "", fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", errors.New("invalid token")
	}

	playerID, ok := claims["sub"].(string)
	if !ok || playerID == "" {
		return "", errors.New("invalid token subject")
	}

	return playerID, nil
}

func (s *Service) GetPlayer(ctx context.Context, playerID string) (*Player, error) {
	p, err := s.store.GetPlayer(ctx, playerID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("get player: %w", err)
	}
	out := toPlayer(p)
	return &out, nil
}

// DisplayName returns the player's username.
func (s *Service) DisplayName(ctx context.Context, playerID string) (string, error) {
	p, err := s.GetPlayer(ctx, playerID)
	if err != nil {
		return "", err
	}
	return p.Username, nil
}

func (s *Service) result(p db.Player) (*AuthResult, error) {
	token, err := s.issueToken(p.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, Player: toPlayer(p)}, nil
}

func (s *Service) issueToken(playerID string) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub": playerID,
		"iat": now.Unix(),
		"exp": now.Add(tokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

func toPlayer(p db.Player) Player {
	return Player{ID: p.ID, Username: p.Username, Avatar: p.Avatar, Guest: p.Guest}
}
