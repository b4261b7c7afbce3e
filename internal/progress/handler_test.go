package progress

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shapeflow/shapeflow/backend-go/internal/auth"
	"github.com/shapeflow/shapeflow/backend-go/internal/document"
)

func withPlayer(r *http.Request, id string) *http.Request {
	return r.WithContext(auth.WithPlayerID(r.Context(), id))
}

func TestHandler_UserProfileAnonymous(t *testing.T) {
	s, _ := newTestService(t)
	h := NewHandler(s, 10)

	rec := httptest.NewRecorder()
	h.UserProfile(rec, httptest.NewRequest(http.MethodGet, "/api/user-profile", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, want 200", rec.Code)
	}
	var p document.UserProfile
	if err := json.NewDecoder(rec.Body).Decode(&p); err != nil {
		t.Fatal(err)
	}
	if p.Username != "Player" || p.Avatar != "/default-avatar.png" {
		t.Errorf("profile %+v", p)
	}
}

func TestHandler_ProgressRoundTrip(t *testing.T) {
	s, _ := newTestService(t, "ann")
	h := NewHandler(s, 10)

	rec := httptest.NewRecorder()
	h.LoadProgress(rec, withPlayer(httptest.NewRequest(http.MethodGet, "/api/load-progress", nil), "player_ann"))
	if got := strings.TrimSpace(rec.Body.String()); got != "null" {
		t.Errorf("empty load body %q, want null", got)
	}

	body := `{"currentLevel":3,"highestLevel":3,"totalCompletions":2,"bestTime":4000,"soundEnabled":false}`
	rec = httptest.NewRecorder()
	h.SaveProgress(rec, withPlayer(httptest.NewRequest(http.MethodPost, "/api/save-progress", strings.NewReader(body)), "player_ann"))
	if rec.Code != http.StatusOK {
		t.Fatalf("save status %d: %s", rec.Code, rec.Body)
	}

	rec = httptest.NewRecorder()
	h.LoadProgress(rec, withPlayer(httptest.NewRequest(http.MethodGet, "/api/load-progress", nil), "player_ann"))
	var p document.Progress
	if err := json.NewDecoder(rec.Body).Decode(&p); err != nil {
		t.Fatal(err)
	}
	if p.CurrentLevel != 3 || p.TotalCompletions != 2 || p.UserID != "player_ann" {
		t.Errorf("progress %+v", p)
	}

	rec = httptest.NewRecorder()
	h.SaveProgress(rec, withPlayer(httptest.NewRequest(http.MethodPost, "/api/save-progress", strings.NewReader("{")), "player_ann"))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("malformed body status %d, want 400", rec.Code)
	}
}

func TestHandler_Leaderboard(t *testing.T) {
	s, _ := newTestService(t, "ann", "bob")
	h := NewHandler(s, 10)

	for _, sub := range []struct {
		id   string
		body string
	}{
		{"player_ann", `{"score":2,"time":3000}`},
		{"player_bob", `{"score":4,"time":9000}`},
	} {
		rec := httptest.NewRecorder()
		h.UpdateLeaderboard(rec, withPlayer(httptest.NewRequest(http.MethodPost, "/api/update-leaderboard", strings.NewReader(sub.body)), sub.id))
		if rec.Code != http.StatusOK {
			t.Fatalf("update status %d", rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	h.Leaderboard(rec, httptest.NewRequest(http.MethodGet, "/api/leaderboard?limit=5", nil))
	var entries []document.LeaderboardEntry
	if err := json.NewDecoder(rec.Body).Decode(&entries); err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 || entries[0].Username != "bob" || entries[0].Rank != 1 {
		t.Errorf("entries %+v", entries)
	}

	rec = httptest.NewRecorder()
	h.Leaderboard(rec, httptest.NewRequest(http.MethodGet, "/api/leaderboard?limit=abc", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad limit status %d, want 400", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.UpdateLeaderboard(rec, withPlayer(httptest.NewRequest(http.MethodPost, "/api/update-leaderboard", strings.NewReader(`{"score":1,"time":1}`)), "player_nobody"))
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown player status %d, want 404", rec.Code)
	}
}

func TestHandler_ShareAchievement(t *testing.T) {
	s, _ := newTestService(t, "ann")
	h := NewHandler(s, 10)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/share-achievement", strings.NewReader(`{"level":3,"time":65000}`))
	h.ShareAchievement(rec, withPlayer(req, "player_ann"))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status %d: %s", rec.Code, rec.Body)
	}
	var a document.Achievement
	if err := json.NewDecoder(rec.Body).Decode(&a); err != nil {
		t.Fatal(err)
	}
	if a.Text != "I completed Level 3 in 1:05! Can you beat my time?" {
		t.Errorf("text %q", a.Text)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/share-achievement", strings.NewReader(`{"level":0,"time":5}`))
	h.ShareAchievement(rec, withPlayer(req, "player_ann"))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("level 0 status %d, want 400", rec.Code)
	}

	list, _ := s.Achievements(context.Background(), "player_ann", 0)
	if len(list) != 1 {
		t.Errorf("achievements %d, want 1", len(list))
	}
}
