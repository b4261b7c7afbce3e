package collab

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type fakeRecorder struct {
	mu    sync.Mutex
	calls []int
	err   error
}

func (f *fakeRecorder) RecordCompletion(_ context.Context, _ string, level int, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, level)
	return f.err
}

// newTestClient returns a client without a connection; tests read its queue.
func newTestClient(h *Hub, userID, runID, clientID string) *Client {
	return NewClient(h, nil, userID, userID, runID, clientID)
}

func drain(c *Client) []*Message {
	var out []*Message
	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				return out
			}
			var m Message
			json.Unmarshal(data, &m)
			out = append(out, &m)
		default:
			return out
		}
	}
}

func types(msgs []*Message) string {
	var ts []string
	for _, m := range msgs {
		ts = append(ts, m.Type)
	}
	return strings.Join(ts, ",")
}

func action(t *testing.T, msgType string, payload any) *Message {
	t.Helper()
	return newMessage(msgType, payload)
}

func newTestRoom(t *testing.T, rec CompletionRecorder, level, highest int) (*Hub, *Room, *Client) {
	t.Helper()
	h := NewHub(rec)
	runID, err := h.createRoom("player_owner", level, highest)
	if err != nil {
		t.Fatal(err)
	}
	owner := newTestClient(h, "player_owner", runID, "c-owner")
	h.addClient(owner)
	return h, h.rooms[runID], owner
}

func TestHub_JoinSendsWelcomeAndSync(t *testing.T) {
	h, room, owner := newTestRoom(t, nil, 1, 1)

	msgs := drain(owner)
	if got := types(msgs); got != "welcome,state.sync" {
		t.Fatalf("owner messages %s", got)
	}
	var welcome WelcomePayload
	json.Unmarshal(msgs[0].Payload, &welcome)
	if welcome.Role != RoleOwner {
		t.Errorf("role %q, want owner", welcome.Role)
	}
	var state StatePayload
	json.Unmarshal(msgs[1].Payload, &state)
	if state.Puzzle == nil || len(state.Puzzle.Pieces) != 3 || state.State.CurrentLevel != 1 {
		t.Errorf("sync payload %+v", state)
	}

	spectator := newTestClient(h, "player_other", room.runID, "c-spec")
	h.addClient(spectator)
	if got := types(drain(spectator)); got != "welcome,state.sync" {
		t.Errorf("spectator messages %s", got)
	}
	if got := types(drain(owner)); got != "presence.join" {
		t.Errorf("owner after join %s", got)
	}
}

func TestHub_UnknownRun(t *testing.T) {
	h := NewHub(nil)
	c := newTestClient(h, "player_x", "run_missing", "c1")
	h.addClient(c)

	msgs := drain(c)
	if len(msgs) != 1 || msgs[0].Type != TypeError {
		t.Fatalf("messages %s", types(msgs))
	}
	if _, ok := <-c.send; ok {
		t.Error("client left open")
	}
}

func TestHub_SpectatorCannotPlay(t *testing.T) {
	h, room, owner := newTestRoom(t, nil, 1, 1)
	spectator := newTestClient(h, "player_other", room.runID, "c-spec")
	h.addClient(spectator)
	drain(owner)
	drain(spectator)

	h.handleMessage(spectator, action(t, TypeRotate, RotatePayload{PieceID: "piece-0"}))

	msgs := drain(spectator)
	if types(msgs) != "error" {
		t.Fatalf("spectator messages %s", types(msgs))
	}
	if got := types(drain(owner)); got != "" {
		t.Errorf("owner saw %s", got)
	}
	if room.engine.Run().MoveCount != 0 {
		t.Error("spectator action changed the run")
	}
}

func TestHub_RotateBroadcasts(t *testing.T) {
	h, room, owner := newTestRoom(t, nil, 1, 1)
	spectator := newTestClient(h, "player_other", room.runID, "c-spec")
	h.addClient(spectator)
	drain(owner)
	drain(spectator)

	h.handleMessage(owner, action(t, TypeRotate, RotatePayload{PieceID: "piece-0"}))

	for _, c := range []*Client{owner, spectator} {
		msgs := drain(c)
		if len(msgs) == 0 || msgs[0].Type != TypeStateUpdate {
			t.Fatalf("%s messages %s", c.ClientID, types(msgs))
		}
		var p StatePayload
		json.Unmarshal(msgs[0].Payload, &p)
		if p.State.MoveCount != 1 || p.Action != TypeRotate || p.Puzzle != nil {
			t.Errorf("%s update moves %d action %q", c.ClientID, p.State.MoveCount, p.Action)
		}
	}

	h.handleMessage(owner, &Message{Type: TypeRotate})
	if got := types(drain(owner)); got != "error" {
		t.Errorf("missing payload answered %s", got)
	}
	h.handleMessage(owner, &Message{Type: "action.dance"})
	if got := types(drain(owner)); got != "error" {
		t.Errorf("unknown type answered %s", got)
	}
}

func solve(t *testing.T, h *Hub, room *Room, owner *Client) {
	t.Helper()
	for _, p := range room.engine.Run().Pieces {
		for i := 0; i < 4; i++ {
			piece, _ := room.engine.Run().Piece(p.ID)
			if piece.Solved() {
				break
			}
			h.handleMessage(owner, action(t, TypeRotate, RotatePayload{PieceID: p.ID}))
		}
	}
	if !room.engine.Run().Complete {
		t.Fatal("run not complete after solving every piece")
	}
}

func TestHub_CompletionRecordsAndUnlocks(t *testing.T) {
	rec := &fakeRecorder{err: errors.New("db down")}
	h, room, owner := newTestRoom(t, rec, 1, 1)
	drain(owner)

	solve(t, h, room, owner)
	h.Stop()

	msgs := drain(owner)
	var complete *Message
	for _, m := range msgs {
		if m.Type == TypeRunComplete {
			if complete != nil {
				t.Error("run.complete sent twice")
			}
			complete = m
		}
	}
	if complete == nil {
		t.Fatalf("no run.complete in %s", types(msgs))
	}
	var p CompletePayload
	json.Unmarshal(complete.Payload, &p)
	if p.Level != 1 || p.Moves != room.engine.Run().MoveCount {
		t.Errorf("complete payload %+v", p)
	}

	if len(rec.calls) != 1 || rec.calls[0] != 1 {
		t.Errorf("recorder calls %v, want [1]", rec.calls)
	}
	if room.highestLevel != 2 {
		t.Errorf("highest level %d, want 2", room.highestLevel)
	}
	if !room.engine.Run().Complete {
		t.Error("recording failure changed the run")
	}
}

func TestHub_AdvanceGating(t *testing.T) {
	h, room, owner := newTestRoom(t, nil, 1, 1)
	drain(owner)

	h.handleMessage(owner, action(t, TypeAdvance, nil))
	if got := types(drain(owner)); got != "error" {
		t.Fatalf("locked advance answered %s", got)
	}

	solve(t, h, room, owner)
	drain(owner)

	h.handleMessage(owner, action(t, TypeAdvance, nil))
	msgs := drain(owner)
	if types(msgs) != "state.update" {
		t.Fatalf("advance answered %s", types(msgs))
	}
	var p StatePayload
	json.Unmarshal(msgs[0].Payload, &p)
	if p.State.CurrentLevel != 2 || p.Puzzle == nil || len(p.Puzzle.Pieces) != 4 || p.State.IsComplete {
		t.Errorf("after advance level %d complete %v", p.State.CurrentLevel, p.State.IsComplete)
	}
}

func TestHub_SelectAndRestart(t *testing.T) {
	h, room, owner := newTestRoom(t, nil, 2, 3)
	drain(owner)

	h.handleMessage(owner, action(t, TypeSelect, SelectPayload{Level: 4}))
	if got := types(drain(owner)); got != "error" {
		t.Errorf("locked select answered %s", got)
	}

	h.handleMessage(owner, action(t, TypeSelect, SelectPayload{Level: 3}))
	if got := types(drain(owner)); got != "state.update" {
		t.Fatalf("select answered %s", got)
	}
	if room.engine.Run().Level != 3 {
		t.Errorf("level %d, want 3", room.engine.Run().Level)
	}

	h.handleMessage(owner, action(t, TypeRotate, RotatePayload{PieceID: "piece-0"}))
	drain(owner)
	h.handleMessage(owner, action(t, TypeRestart, nil))
	if got := types(drain(owner)); got != "state.update" {
		t.Fatalf("restart answered %s", got)
	}
	if room.engine.Run().MoveCount != 0 {
		t.Errorf("moves after restart %d", room.engine.Run().MoveCount)
	}
}

func TestHub_LastClientClosesRoom(t *testing.T) {
	h, room, owner := newTestRoom(t, nil, 1, 1)
	spectator := newTestClient(h, "player_other", room.runID, "c-spec")
	h.addClient(spectator)
	drain(owner)

	h.removeClient(spectator)
	if got := types(drain(owner)); got != "presence.leave" {
		t.Errorf("owner saw %s", got)
	}
	if _, ok := h.rooms[room.runID]; !ok {
		t.Fatal("room closed while owner connected")
	}

	h.removeClient(owner)
	if _, ok := h.rooms[room.runID]; ok {
		t.Error("empty room kept")
	}
}

func TestHub_CreateRunAfterStop(t *testing.T) {
	h := NewHub(nil)
	go h.Run()

	id, err := h.CreateRun(context.Background(), "player_a", 1, 1)
	if err != nil || !strings.HasPrefix(id, "run_") {
		t.Fatalf("CreateRun = %q, %v", id, err)
	}

	h.Stop()
	if _, err := h.CreateRun(context.Background(), "player_a", 1, 1); !errors.Is(err, ErrHubStopped) {
		t.Errorf("after stop err %v, want ErrHubStopped", err)
	}
}

// slowRecorder signals when a record starts and counts the ones that finish.
type slowRecorder struct {
	called   chan struct{}
	delay    time.Duration
	finished atomic.Int32
}

func (s *slowRecorder) RecordCompletion(_ context.Context, _ string, _ int, _ time.Duration) error {
	s.called <- struct{}{}
	time.Sleep(s.delay)
	s.finished.Add(1)
	return nil
}

// solveMessages returns the rotate actions that complete the room's run.
func solveMessages(t *testing.T, room *Room) []*Message {
	t.Helper()
	run := room.engine.Run()
	var msgs []*Message
	for _, p := range run.Pieces {
		for i := 0; i < 360; i++ {
			piece, _ := run.Piece(p.ID)
			if piece.Solved() {
				break
			}
			var err error
			if run, err = run.Turn(p.ID, time.Now()); err != nil {
				t.Fatal(err)
			}
			msgs = append(msgs, action(t, TypeRotate, RotatePayload{PieceID: p.ID}))
		}
	}
	if !run.Complete {
		t.Fatal("rotations do not complete the run")
	}
	return msgs
}

func TestHub_StopWaitsForRecords(t *testing.T) {
	rec := &slowRecorder{called: make(chan struct{}, 1), delay: 50 * time.Millisecond}
	h, room, owner := newTestRoom(t, rec, 1, 1)
	drain(owner)

	for _, m := range solveMessages(t, room) {
		h.submit(owner, m)
	}
	go h.Run()

	select {
	case <-rec.called:
	case <-time.After(5 * time.Second):
		t.Fatal("completion never recorded")
	}
	h.Stop()

	if got := rec.finished.Load(); got != 1 {
		t.Errorf("finished records %d, want 1", got)
	}
}

func TestHub_StopWhileSolving(t *testing.T) {
	for i := 0; i < 20; i++ {
		rec := &fakeRecorder{}
		h, room, owner := newTestRoom(t, rec, 1, 1)
		drain(owner)

		for _, m := range solveMessages(t, room) {
			h.submit(owner, m)
		}
		go h.Run()
		h.Stop()

		// Run has returned, so the room is safe to read.
		rec.mu.Lock()
		calls := len(rec.calls)
		rec.mu.Unlock()
		if complete := room.engine.Run().Complete; complete != (calls == 1) {
			t.Fatalf("iteration %d: run complete %v with %d recorded completions", i, complete, calls)
		}
	}
}

func TestClient_DecodeAction(t *testing.T) {
	c := newTestClient(NewHub(nil), "player_a", "run_x", "c1")

	msg, ok := c.decodeAction([]byte(`{"type":"action.rotate","userId":"spoofed","payload":{"pieceId":"piece-1"}}`))
	if !ok {
		t.Fatal("rotate rejected")
	}
	if msg.UserID != "player_a" || msg.ClientID != "c1" || msg.RunID != "run_x" {
		t.Errorf("stamped ids %q %q %q", msg.UserID, msg.ClientID, msg.RunID)
	}

	for _, raw := range []string{`{"type":"state.update"}`, `not json`} {
		if _, ok := c.decodeAction([]byte(raw)); ok {
			t.Errorf("accepted %s", raw)
		}
	}
}

func TestActionLimiter(t *testing.T) {
	l := newActionLimiter()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < actionBurst; i++ {
		if !l.AllowN(now, 1) {
			t.Fatalf("action %d throttled inside burst", i)
		}
	}
	if l.AllowN(now, 1) {
		t.Error("action allowed past burst")
	}
	if !l.AllowN(now.Add(actionRefill), 1) {
		t.Error("token not refilled after interval")
	}
	if l.AllowN(now.Add(actionRefill), 1) {
		t.Error("refill granted more than one token")
	}
}
