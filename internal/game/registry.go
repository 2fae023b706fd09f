package game

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/owenfeik/vttserver/internal/core/event"
	"github.com/owenfeik/vttserver/internal/scene"
)

// Registry is the process-wide map from GameKey to the GameServer it
// addresses, guarded by its own lock exactly as the teacher's opcode
// dispatch table is: acquired only for the short lookup/insert/remove
// around a game's lifetime, never held across a game's own processing.
type Registry struct {
	mu    sync.RWMutex
	games map[GameKey]*GameServer
	store Persister
	log   *zap.Logger

	events *event.Bus
	stopCh chan struct{}
}

// NewRegistry builds an empty registry and starts the goroutine that pumps
// GameSaved/GameDied events from every game's shared bus to subscribers.
// Subscribe on Events() before any game is created to avoid missing its
// first events.
func NewRegistry(store Persister, log *zap.Logger) *Registry {
	r := &Registry{
		games:  make(map[GameKey]*GameServer),
		store:  store,
		log:    log,
		events: event.NewBus(),
		stopCh: make(chan struct{}),
	}
	go r.pumpEvents()
	return r
}

// Events returns the bus lifecycle events are published to. Subscribe with
// event.Subscribe before games are created.
func (r *Registry) Events() *event.Bus { return r.events }

func (r *Registry) pumpEvents() {
	ticker := time.NewTicker(DefaultTickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-r.stopCh:
			return
		case <-ticker.C:
			r.events.SwapBuffers()
			r.events.DispatchAll()
		}
	}
}

// CreateGame allocates a fresh GameKey, constructs a GameServer owned by
// owner over project/current, starts its background loop, and registers
// it. This is the adapter-facing create_game operation.
func (r *Registry) CreateGame(owner uuid.UUID, project *scene.Project, current *scene.Scene) (GameKey, *GameServer, error) {
	key, err := NewGameKey()
	if err != nil {
		return "", nil, err
	}

	r.mu.Lock()
	for r.games[key] != nil {
		r.mu.Unlock()
		key, err = NewGameKey()
		if err != nil {
			return "", nil, err
		}
		r.mu.Lock()
	}

	gs := NewGameServer(key, owner, project, current, r.log.With(zap.String("game", string(key))), r.store, r.events)
	gs.SetOnDead(func() { r.remove(key) })
	r.games[key] = gs
	r.mu.Unlock()

	gs.Run()
	return key, gs, nil
}

// JoinGame generates a fresh ClientKey and registers account under it in
// the named game, the adapter-facing join_game operation.
func (r *Registry) JoinGame(key GameKey, account uuid.UUID, name string) (ClientKey, error) {
	gs, ok := r.Get(key)
	if !ok {
		return "", fmt.Errorf("game: no such game %q", key)
	}
	clientKey, err := NewClientKey()
	if err != nil {
		return "", err
	}
	gs.AddClient(clientKey, account, name)
	return clientKey, nil
}

// Get looks up a live game by key.
func (r *Registry) Get(key GameKey) (*GameServer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	gs, ok := r.games[key]
	return gs, ok
}

func (r *Registry) remove(key GameKey) {
	r.mu.Lock()
	delete(r.games, key)
	r.mu.Unlock()
}

// Len reports how many games are currently registered.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.games)
}

// Shutdown stops every registered game's background loop. It makes no final
// save and does not wait for the loops to exit.
func (r *Registry) Shutdown() {
	r.mu.RLock()
	games := make([]*GameServer, 0, len(r.games))
	for _, gs := range r.games {
		games = append(games, gs)
	}
	r.mu.RUnlock()

	for _, gs := range games {
		gs.Stop()
	}

	select {
	case <-r.stopCh:
	default:
		close(r.stopCh)
	}
}
