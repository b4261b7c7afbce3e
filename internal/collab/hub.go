package collab

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shapeflow/shapeflow/backend-go/internal/document"
	"github.com/shapeflow/shapeflow/backend-go/internal/engine"
	"github.com/shapeflow/shapeflow/backend-go/internal/typeid"
)

// ErrHubStopped is returned by calls made after Stop.
var ErrHubStopped = errors.New("hub stopped")

// ErrRunNotFound is returned when joining a run that does not exist.
var ErrRunNotFound = errors.New("run not found")

const recordTimeout = 10 * time.Second

// CompletionRecorder persists a solved level for a player.
type CompletionRecorder interface {
	RecordCompletion(ctx context.Context, playerID string, level int, elapsed time.Duration) error
}

// Room is one live run and the clients watching it.
type Room struct {
	runID        string
	ownerID      string
	highestLevel int
	engine       *engine.Engine
	clients      map[string]*Client // clientID -> client
}

func (r *Room) role(c *Client) string {
	if c.UserID == r.ownerID {
		return RoleOwner
	}
	return RoleSpectator
}

type inbound struct {
	client *Client
	msg    *Message
}

type createRequest struct {
	ownerID      string
	level        int
	highestLevel int
	reply        chan createResult
}

type createResult struct {
	runID string
	err   error
}

// Hub owns every room. All room state is read and written by the Run
// goroutine only; other goroutines talk to it through channels.
type Hub struct {
	rooms      map[string]*Room // runID -> room
	register   chan *Client
	unregister chan *Client
	inbound    chan inbound
	create     chan createRequest
	done       chan struct{}
	stopOnce   sync.Once
	stopped    chan struct{} // closed when Run returns

	lifecycle sync.Mutex
	running   bool

	recorder CompletionRecorder
	records  sync.WaitGroup
	now      func() time.Time
}

func NewHub(recorder CompletionRecorder) *Hub {
	return &Hub{
		rooms:      make(map[string]*Room),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		inbound:    make(chan inbound, 64),
		create:     make(chan createRequest),
		done:       make(chan struct{}),
		stopped:    make(chan struct{}),
		recorder:   recorder,
		now:        time.Now,
	}
}

// Run processes hub events until Stop. Only the first call runs the loop.
func (h *Hub) Run() {
	h.lifecycle.Lock()
	if h.running || h.isStopped() {
		h.lifecycle.Unlock()
		return
	}
	h.running = true
	h.lifecycle.Unlock()
	defer close(h.stopped)

	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case in := <-h.inbound:
			h.handleMessage(in.client, in.msg)
		case req := <-h.create:
			runID, err := h.createRoom(req.ownerID, req.level, req.highestLevel)
			req.reply <- createResult{runID: runID, err: err}
		case <-h.done:
			return
		}
	}
}

// Stop ends the Run loop, waits for it to return, then waits for pending
// completion records.
func (h *Hub) Stop() {
	h.lifecycle.Lock()
	h.stopOnce.Do(func() { close(h.done) })
	running := h.running
	h.lifecycle.Unlock()

	if running {
		<-h.stopped
	}
	h.records.Wait()
}

func (h *Hub) isStopped() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// CreateRun opens a room for ownerID on the given level. highestLevel bounds
// the levels the owner may select later.
func (h *Hub) CreateRun(ctx context.Context, ownerID string, level, highestLevel int) (string, error) {
	if h.isStopped() {
		return "", ErrHubStopped
	}

	req := createRequest{ownerID: ownerID, level: level, highestLevel: highestLevel, reply: make(chan createResult, 1)}
	select {
	case h.create <- req:
	case <-h.done:
		return "", ErrHubStopped
	case <-ctx.Done():
		return "", ctx.Err()
	}
	select {
	case res := <-req.reply:
		return res.runID, res.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) submit(client *Client, msg *Message) {
	select {
	case h.inbound <- inbound{client: client, msg: msg}:
	case <-h.done:
	}
}

func (h *Hub) createRoom(ownerID string, level, highestLevel int) (string, error) {
	e := engine.NewEngine(engine.WithClock(h.now))
	if err := e.StartGame(level); err != nil {
		return "", fmt.Errorf("create run: %w", err)
	}
	if highestLevel < level {
		highestLevel = level
	}

	runID := typeid.NewRunID()
	h.rooms[runID] = &Room{
		runID:        runID,
		ownerID:      ownerID,
		highestLevel: highestLevel,
		engine:       e,
		clients:      make(map[string]*Client),
	}
	slog.Info("run created", "run", runID, "owner", ownerID, "level", level)
	return runID, nil
}

func (h *Hub) addClient(client *Client) {
	room, ok := h.rooms[client.RunID]
	if !ok {
		client.Send(newMessage(TypeError, ErrorPayload{Message: ErrRunNotFound.Error()}))
		client.Close()
		return
	}
	room.clients[client.ClientID] = client

	role := room.role(client)
	client.Send(newMessage(TypeWelcome, WelcomePayload{ClientID: client.ClientID, Role: role}))
	client.Send(h.stateMessage(room, TypeStateSync, "", true))

	join := newMessage(TypePresenceJoin, PresencePayload{UserID: client.UserID, DisplayName: client.DisplayName, Role: role})
	join.UserID = client.UserID
	h.broadcastToRoom(room, join, client.ClientID)

	slog.Info("client joined", "user", client.UserID, "run", client.RunID, "role", role)
}

func (h *Hub) removeClient(client *Client) {
	room, ok := h.rooms[client.RunID]
	if !ok {
		return
	}
	if _, ok := room.clients[client.ClientID]; !ok {
		return
	}

	delete(room.clients, client.ClientID)
	client.Close()

	if len(room.clients) == 0 {
		delete(h.rooms, client.RunID)
		slog.Info("run closed", "run", client.RunID)
	}

	leave := newMessage(TypePresenceLeave, PresencePayload{UserID: client.UserID, DisplayName: client.DisplayName})
	leave.UserID = client.UserID
	h.broadcastToRoom(room, leave, "")

	slog.Info("client left", "user", client.UserID, "run", client.RunID)
}

func (h *Hub) handleMessage(sender *Client, msg *Message) {
	room, ok := h.rooms[sender.RunID]
	if !ok {
		return
	}
	if _, joined := room.clients[sender.ClientID]; !joined {
		return
	}
	if room.role(sender) != RoleOwner {
		sender.Send(newMessage(TypeError, ErrorPayload{Message: "only the run owner can play"}))
		return
	}

	var err error
	switch msg.Type {
	case TypeRotate:
		err = h.handleRotate(room, msg)
	case TypeRestart:
		err = h.handleRestart(room)
	case TypeAdvance:
		err = h.handleAdvance(room)
	case TypeSelect:
		err = h.handleSelect(room, msg)
	default:
		slog.Warn("unknown message type", "type", msg.Type, "user", sender.UserID)
		err = fmt.Errorf("unknown message type %q", msg.Type)
	}
	if err != nil {
		sender.Send(newMessage(TypeError, ErrorPayload{Message: err.Error()}))
	}
}

func (h *Hub) handleRotate(room *Room, msg *Message) error {
	var p RotatePayload
	if err := decodePayload(msg, &p); err != nil {
		return err
	}

	solved, err := room.engine.Rotate(p.PieceID)
	if err != nil {
		return err
	}
	h.broadcastToRoom(room, h.stateMessage(room, TypeStateUpdate, TypeRotate, false), "")

	if solved {
		h.completeRun(room)
	}
	return nil
}

func (h *Hub) handleRestart(room *Room) error {
	if err := room.engine.Restart(); err != nil {
		return err
	}
	h.broadcastToRoom(room, h.stateMessage(room, TypeStateUpdate, TypeRestart, true), "")
	return nil
}

func (h *Hub) handleAdvance(room *Room) error {
	run := room.engine.Run()
	if !run.Complete && run.Level+1 > room.highestLevel {
		return fmt.Errorf("level %d is locked", run.Level+1)
	}

	room.engine.Advance()
	if err := room.engine.Generate(); err != nil {
		return err
	}
	h.broadcastToRoom(room, h.stateMessage(room, TypeStateUpdate, TypeAdvance, true), "")
	return nil
}

func (h *Hub) handleSelect(room *Room, msg *Message) error {
	var p SelectPayload
	if err := decodePayload(msg, &p); err != nil {
		return err
	}
	if p.Level < 1 || p.Level > room.highestLevel {
		return fmt.Errorf("level %d is locked", p.Level)
	}

	if err := room.engine.SelectLevel(p.Level); err != nil {
		return err
	}
	h.broadcastToRoom(room, h.stateMessage(room, TypeStateUpdate, TypeSelect, true), "")
	return nil
}

// completeRun unlocks the next level, announces the result and records it in
// the background. Recording failures never touch the room.
func (h *Hub) completeRun(room *Room) {
	run := room.engine.Run()
	if run.Level+1 > room.highestLevel {
		room.highestLevel = run.Level + 1
	}

	h.broadcastToRoom(room, newMessage(TypeRunComplete, CompletePayload{
		Level:          run.Level,
		CompletionTime: run.CompletedIn.Milliseconds(),
		Moves:          run.MoveCount,
	}), "")
	slog.Info("run completed", "run", room.runID, "owner", room.ownerID, "level", run.Level, "moves", run.MoveCount, "elapsed", run.CompletedIn)

	if h.recorder == nil {
		return
	}
	owner, level, elapsed := room.ownerID, run.Level, run.CompletedIn
	h.records.Add(1)
	go func() {
		defer h.records.Done()
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		defer cancel()
		if err := h.recorder.RecordCompletion(ctx, owner, level, elapsed); err != nil {
			slog.Error("record completion", "error", err, "player", owner, "level", level)
		}
	}()
}

func (h *Hub) stateMessage(room *Room, msgType, action string, withPuzzle bool) *Message {
	payload := StatePayload{
		RunID:        room.runID,
		OwnerID:      room.ownerID,
		Action:       action,
		HighestLevel: room.highestLevel,
		State:        document.NewRunState(room.engine.Run(), h.now()),
	}
	if withPuzzle {
		if p := room.engine.Puzzle(); p != nil {
			doc := document.NewPuzzleDocument(p)
			doc.Pieces = payload.State.Pieces
			payload.Puzzle = doc
		}
	}
	msg := newMessage(msgType, payload)
	msg.RunID = room.runID
	return msg
}

func (h *Hub) broadcastToRoom(room *Room, msg *Message, excludeClientID string) {
	for _, c := range room.clients {
		if c.ClientID != excludeClientID {
			c.Send(msg)
		}
	}
}
