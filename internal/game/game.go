package game

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/owenfeik/vttserver/internal/core/event"
	"github.com/owenfeik/vttserver/internal/perms"
	"github.com/owenfeik/vttserver/internal/scene"
	"github.com/owenfeik/vttserver/internal/wire"
)

// State is a GameServer's place in its Alive -> Dying -> Dead lifecycle.
type State int

const (
	Alive State = iota
	Dying
	Dead
)

func (s State) String() string {
	switch s {
	case Alive:
		return "alive"
	case Dying:
		return "dying"
	case Dead:
		return "dead"
	default:
		return "unknown"
	}
}

const (
	// DefaultSaveInterval is how often a modified game is persisted.
	DefaultSaveInterval = 10 * time.Second
	// DefaultIdleTimeout is how long a game may go without activity before
	// it is marked dead and evicted from the registry.
	DefaultIdleTimeout = 30 * time.Minute
	// DefaultTickInterval paces the background Runner.
	DefaultTickInterval = 250 * time.Millisecond
)

// Persister saves a Project to durable storage. Nil is a valid value for
// tests: saves are then silently skipped.
type Persister interface {
	SaveProject(ctx context.Context, p *scene.Project) error
}

// GameServer owns one Project's canonical state: its current Scene,
// permissions, and connected clients. All mutation happens under mu; the
// canonical Scene is never handed out except by value-copying fields
// needed for a bootstrap send.
type GameServer struct {
	mu sync.RWMutex

	key     GameKey
	project *scene.Project
	scene   *scene.Scene
	perms   *perms.Perms

	clients      map[ClientKey]*client
	users        map[uuid.UUID]scene.Id
	nextUser     scene.Id
	playerLayers map[scene.Id]scene.Id // user -> their implicit named layer

	lastActivity time.Time
	lastSaved    time.Time
	modified     bool
	state        State

	store  Persister
	log    *zap.Logger
	events *event.Bus // optional; lifecycle events go unreported if nil

	saveInterval time.Duration
	idleTimeout  time.Duration
	tickInterval time.Duration

	inbox   chan inboundMsg
	pending []inboundMsg
	outbox  []outboundMsg

	runner *runner
	stopCh chan struct{}
	doneCh chan struct{}
	onDead func()
}

type inboundMsg struct {
	from ClientKey
	msg  wire.ClientMessage
}

type outboundMsg struct {
	to        *client // non-nil: direct send
	broadcast bool
	except    *client // for broadcast: skip this client, if any
	event     wire.ServerEvent
}

// NewGameServer constructs a game in the Alive state, owned by owner. store
// may be nil, in which case the game never persists itself. events may be
// nil, in which case lifecycle events are simply not reported.
func NewGameServer(key GameKey, owner uuid.UUID, project *scene.Project, current *scene.Scene, log *zap.Logger, store Persister, events *event.Bus) *GameServer {
	gs := &GameServer{
		key:          key,
		project:      project,
		scene:        current,
		perms:        perms.New(),
		clients:      make(map[ClientKey]*client),
		users:        make(map[uuid.UUID]scene.Id),
		nextUser:     perms.CanonicalUpdater + 1,
		playerLayers: make(map[scene.Id]scene.Id),
		lastActivity: time.Now(),
		lastSaved:    time.Now(),
		state:        Alive,
		store:        store,
		log:          log,
		events:       events,
		saveInterval: DefaultSaveInterval,
		idleTimeout:  DefaultIdleTimeout,
		tickInterval: DefaultTickInterval,
		inbox:        make(chan inboundMsg, 256),
		stopCh:       make(chan struct{}),
		doneCh:       make(chan struct{}),
	}
	gs.perms.SetOwner(gs.userFor(owner))
	gs.runner = newRunner(gs)
	return gs
}

func (gs *GameServer) Key() GameKey { return gs.key }

// SetOnDead registers a callback fired exactly once, after the game has
// finished its final save and closed every client, when it reaches Dead.
// The registry uses this to deregister itself without polling.
func (gs *GameServer) SetOnDead(f func()) {
	gs.mu.Lock()
	gs.onDead = f
	gs.mu.Unlock()
}

func (gs *GameServer) State() State {
	gs.mu.RLock()
	defer gs.mu.RUnlock()
	return gs.state
}

// RequestGameOver ends the game early on requester's authority, provided
// they hold Owner. Returns false if requester lacks authority.
func (gs *GameServer) RequestGameOver(requester uuid.UUID) bool {
	gs.mu.RLock()
	user, known := gs.users[requester]
	authorized := known && gs.perms.RoleOf(user) == perms.Owner
	gs.mu.RUnlock()
	if !authorized {
		return false
	}
	gs.die()
	return true
}

// userFor returns account's stable per-game user id, assigning a fresh one
// the first time this account is seen. Caller must hold mu.
func (gs *GameServer) userFor(account uuid.UUID) scene.Id {
	if id, ok := gs.users[account]; ok {
		return id
	}
	id := gs.nextUser
	gs.nextUser++
	gs.users[account] = id
	return id
}

func (gs *GameServer) touch() {
	gs.lastActivity = time.Now()
}

func (gs *GameServer) clientByUser(user scene.Id) *client {
	for _, c := range gs.clients {
		if c.user == user {
			return c
		}
	}
	return nil
}

func (gs *GameServer) queueSend(c *client, e wire.ServerEvent) {
	gs.outbox = append(gs.outbox, outboundMsg{to: c, event: e})
}

func (gs *GameServer) queueBroadcastExcept(except *client, e wire.ServerEvent) {
	gs.outbox = append(gs.outbox, outboundMsg{broadcast: true, except: except, event: e})
}

func (gs *GameServer) queueBroadcastAll(e wire.ServerEvent) {
	gs.outbox = append(gs.outbox, outboundMsg{broadcast: true, event: e})
}

// AddClient registers account under key, granting it a Player role unless
// it already holds Owner, and ensures a layer titled name exists with an
// override letting that user create and remove sprites on it.
func (gs *GameServer) AddClient(key ClientKey, account uuid.UUID, name string) {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	user := gs.userFor(account)

	if gs.perms.RoleOf(user) != perms.Owner {
		if evt, ok := gs.perms.RoleChange(perms.CanonicalUpdater, user, perms.Player); ok {
			gs.queueBroadcastAll(wire.PermsUpdate(evt))
		}
	}

	for _, e := range gs.ensurePlayerLayer(user, name) {
		gs.queueBroadcastAll(wire.SceneUpdate(e))
	}

	gs.clients[key] = &client{key: key, account: account, user: user, name: name}
	gs.touch()
	gs.modified = true
}

// ensurePlayerLayer finds or creates user's named layer, recording it in
// playerLayers and granting the overrides that let them populate it.
// Caller must hold mu.
func (gs *GameServer) ensurePlayerLayer(user scene.Id, name string) []scene.SceneEvent {
	if id, ok := gs.playerLayers[user]; ok && gs.scene.Layer(id) != nil {
		return nil
	}

	for _, l := range gs.scene.Layers {
		if l.Title == name {
			gs.playerLayers[user] = l.ID
			gs.grantLayerOverrides(user, l.ID)
			return nil
		}
	}

	z := int32(1)
	if len(gs.scene.Layers) > 0 {
		if top := gs.scene.Layers[0].Z + 1; top > z {
			z = top
		}
	}
	id := gs.scene.NextID()
	event := gs.scene.AddLayer(scene.NewLayer(id, name, z))
	gs.playerLayers[user] = id
	gs.grantLayerOverrides(user, id)
	return []scene.SceneEvent{event}
}

func (gs *GameServer) grantLayerOverrides(user, layer scene.Id) {
	gs.perms.NewOverride(perms.CanonicalUpdater, perms.NewItemOverride(user, perms.PermNames.SpriteNew, layer))
	gs.perms.NewOverride(perms.CanonicalUpdater, perms.NewItemOverride(user, perms.PermNames.SpriteRemove, layer))
}

// ConnectClient attaches sender to a previously added client, bootstrapping
// it with its user id, current perms, and current scene. Reports whether
// key names a registered client.
func (gs *GameServer) ConnectClient(key ClientKey, sender Sender) bool {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	c, ok := gs.clients[key]
	if !ok {
		return false
	}
	c.sender = sender
	gs.touch()

	c.send(wire.UserID(c.account))
	c.send(wire.PermsChange(gs.perms))
	c.send(wire.SceneChange(gs.scene))
	return true
}

// DropClient removes key from the client table. The caller owns closing
// the underlying transport.
func (gs *GameServer) DropClient(key ClientKey) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	delete(gs.clients, key)
}

// Submit enqueues a message received from key for processing on the next
// tick. It never blocks: a full inbox drops the message, the same
// back-pressure policy the transport layer applies to a slow outbound
// queue, since a game accepting messages faster than it can apply them is
// already falling behind.
func (gs *GameServer) Submit(from ClientKey, msg wire.ClientMessage) {
	select {
	case gs.inbox <- inboundMsg{from: from, msg: msg}:
	default:
		gs.log.Warn("game inbox full, dropping message")
	}
}

// applyInbound processes one queued message under the write lock, queuing
// whatever Approval/Rejection/broadcast it produces onto the outbox for the
// broadcast system to flush.
func (gs *GameServer) applyInbound(m inboundMsg) {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	c, ok := gs.clients[m.from]
	if !ok || !c.connected() {
		return
	}

	switch m.msg.Event.Kind {
	case wire.ClientPing:
		gs.queueSend(c, wire.Approval(m.msg.ID))
	case wire.ClientSceneUpdate:
		gs.applySceneUpdate(c, m.msg)
	case wire.ClientSceneChange:
		gs.applySceneChange(c, m.msg)
	}
}

// eventLayer resolves the layer an event is scoped to for the purpose of a
// permission check: the event's own layer id if it carries one, else its
// sprite's enclosing layer, mirroring the Interactor's identical fallback
// so server-side enforcement matches the client's optimistic check exactly.
func eventLayer(s *scene.Scene, e scene.SceneEvent) (scene.Id, bool) {
	if id, ok := e.LayerID(); ok {
		return id, true
	}
	if id, ok := e.SpriteID(); ok {
		if l := s.LayerOf(id); l != nil {
			return l.ID, true
		}
	}
	return 0, false
}

func (gs *GameServer) applySceneUpdate(c *client, msg wire.ClientMessage) {
	event := msg.Event.SceneEvent

	var permitted func(e scene.SceneEvent) bool
	permitted = func(e scene.SceneEvent) bool {
		if e.Kind == scene.KindEventSet {
			for _, sub := range e.Events {
				if !permitted(sub) {
					return false
				}
			}
			return true
		}
		layer, hasLayer := eventLayer(gs.scene, e)
		return gs.perms.Permitted(c.user, e, layer, hasLayer)
	}

	if permitted(event) && scene.Apply(gs.scene, event) {
		gs.queueSend(c, wire.Approval(msg.ID))
		gs.queueBroadcastExcept(c, wire.SceneUpdate(event))
		gs.touch()
		gs.modified = true
		gs.recreateImplicitLayer(event)
		return
	}
	gs.queueSend(c, wire.Rejection(msg.ID))
}

// recreateImplicitLayer re-creates a player's named layer if the event that
// just applied removed it, so a player is never left without a layer of
// their own to work in.
func (gs *GameServer) recreateImplicitLayer(event scene.SceneEvent) {
	if event.Kind != scene.KindLayerRemove {
		return
	}
	removed, ok := event.Item()
	if !ok {
		return
	}
	for user, layerID := range gs.playerLayers {
		if layerID != removed {
			continue
		}
		name := ""
		if c := gs.clientByUser(user); c != nil {
			name = c.name
		}
		for _, e := range gs.ensurePlayerLayer(user, name) {
			gs.queueBroadcastAll(wire.SceneUpdate(e))
		}
	}
}

func (gs *GameServer) applySceneChange(c *client, msg wire.ClientMessage) {
	target := gs.project.Scene(msg.Event.SceneUUID)
	if target == nil || gs.perms.RoleOf(c.user) < perms.Editor {
		gs.queueSend(c, wire.Rejection(msg.ID))
		return
	}

	gs.saveLocked(context.Background())
	gs.scene = target
	gs.touch()

	gs.queueSend(c, wire.Approval(msg.ID))
	gs.queueBroadcastExcept(c, wire.SceneChange(target))
	gs.queueBroadcastAll(wire.PermsChange(gs.perms))
}

// saveLocked persists the project if a store is configured. Caller must
// hold mu.
func (gs *GameServer) saveLocked(ctx context.Context) {
	if gs.store == nil {
		return
	}
	if err := gs.store.SaveProject(ctx, gs.project); err != nil {
		gs.log.Error("save project failed", zap.String("game", string(gs.key)), zap.Error(err))
		return
	}
	gs.modified = false
	gs.lastSaved = time.Now()
	if gs.events != nil {
		event.Emit(gs.events, event.GameSaved{Key: string(gs.key)})
	}
}

// flushOutbox sends every queued outbound message. Caller must hold mu (or
// a copy of the client table safe to range without it).
func (gs *GameServer) flushOutbox() {
	for _, m := range gs.outbox {
		if m.broadcast {
			for _, c := range gs.clients {
				if c == m.except || !c.connected() {
					continue
				}
				c.send(m.event)
			}
			continue
		}
		if m.to != nil && m.to.connected() {
			m.to.send(m.event)
		}
	}
	gs.outbox = gs.outbox[:0]
}
