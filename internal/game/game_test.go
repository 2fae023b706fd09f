package game

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/owenfeik/vttserver/internal/core/event"
	"github.com/owenfeik/vttserver/internal/perms"
	"github.com/owenfeik/vttserver/internal/scene"
	"github.com/owenfeik/vttserver/internal/wire"
)

// fakeSender records every ServerEvent sent to it, standing in for a
// netsrv.Session in tests.
type fakeSender struct {
	mu     sync.Mutex
	events []wire.ServerEvent
	closed bool
}

func (f *fakeSender) Send(e wire.ServerEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, e)
}

func (f *fakeSender) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func (f *fakeSender) last() wire.ServerEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.events[len(f.events)-1]
}

func (f *fakeSender) kinds() []wire.ServerEventKind {
	f.mu.Lock()
	defer f.mu.Unlock()
	ks := make([]wire.ServerEventKind, len(f.events))
	for i, e := range f.events {
		ks[i] = e.Kind
	}
	return ks
}

func (f *fakeSender) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = nil
}

func newTestGame(t *testing.T, owner uuid.UUID) (*GameServer, *scene.Project, *scene.Scene) {
	t.Helper()
	sceneUUID := uuid.New()
	projUUID := uuid.New()
	sc := scene.NewScene(sceneUUID, projUUID, "Starter")
	proj := scene.NewProject(projUUID, "Test Project")
	proj.AddScene(sc)

	gs := NewGameServer("testkey", owner, proj, sc, zap.NewNop(), nil, nil)
	return gs, proj, sc
}

func TestAddClientGrantsPlayerRoleAndNamedLayer(t *testing.T) {
	owner := uuid.New()
	gs, _, sc := newTestGame(t, owner)

	player := uuid.New()
	key, err := NewClientKey()
	if err != nil {
		t.Fatalf("new client key: %v", err)
	}
	gs.AddClient(key, player, "alice")

	user := gs.users[player]
	if gs.perms.RoleOf(user) != perms.Player {
		t.Fatalf("expected player role, got %v", gs.perms.RoleOf(user))
	}

	var layer *scene.Layer
	for _, l := range sc.Layers {
		if l.Title == "alice" {
			layer = l
		}
	}
	if layer == nil {
		t.Fatalf("expected a layer titled alice to be created")
	}

	sprite := scene.NewSprite(sc.NextID(), scene.SpriteVisual{})
	ev := scene.SpriteNew(sprite, layer.ID)
	if !gs.perms.Permitted(user, ev, layer.ID, true) {
		t.Fatalf("player should be permitted to create a sprite on their own layer")
	}
}

func TestAddClientReusesExistingLayerWithMatchingTitle(t *testing.T) {
	owner := uuid.New()
	gs, _, sc := newTestGame(t, owner)

	id := sc.NextID()
	sc.AddLayer(scene.NewLayer(id, "bob", 1))

	key, _ := NewClientKey()
	gs.AddClient(key, uuid.New(), "bob")

	count := 0
	for _, l := range sc.Layers {
		if l.Title == "bob" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected exactly one layer titled bob, got %d", count)
	}
}

func TestConnectClientBootstraps(t *testing.T) {
	owner := uuid.New()
	gs, _, _ := newTestGame(t, owner)

	key, _ := NewClientKey()
	gs.AddClient(key, owner, "owner")

	sender := &fakeSender{}
	if ok := gs.ConnectClient(key, sender); !ok {
		t.Fatalf("expected ConnectClient to succeed for a registered key")
	}

	got := sender.kinds()
	want := []wire.ServerEventKind{wire.ServerUserID, wire.ServerPermsChange, wire.ServerSceneChange}
	if len(got) != len(want) {
		t.Fatalf("expected %d bootstrap events, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("bootstrap event %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestConnectClientUnknownKeyFails(t *testing.T) {
	owner := uuid.New()
	gs, _, _ := newTestGame(t, owner)
	if ok := gs.ConnectClient(ClientKey("nope"), &fakeSender{}); ok {
		t.Fatalf("expected ConnectClient to fail for an unregistered key")
	}
}

func TestSceneUpdateApprovedAndBroadcastButNotEchoed(t *testing.T) {
	owner := uuid.New()
	gs, _, sc := newTestGame(t, owner)

	ownerKey, _ := NewClientKey()
	gs.AddClient(ownerKey, owner, "owner")
	ownerSender := &fakeSender{}
	gs.ConnectClient(ownerKey, ownerSender)

	otherKey, _ := NewClientKey()
	other := uuid.New()
	gs.AddClient(otherKey, other, "bystander")
	otherSender := &fakeSender{}
	gs.ConnectClient(otherKey, otherSender)

	layerID := sc.FirstLayer()
	if layerID == 0 {
		layerID = sc.NextID()
		sc.AddLayer(scene.NewLayer(layerID, "Untitled", 1))
	}
	sprite := scene.NewSprite(sc.NextID(), scene.SpriteVisual{})
	ev := scene.SpriteNew(sprite, layerID)

	// Drain the layer-creation/role-change broadcasts add_client produced
	// before submitting the event under test, so the assertions below
	// concern only that event's own effects.
	gs.runner.Tick(time.Millisecond)
	ownerSender.reset()
	otherSender.reset()

	gs.Submit(ownerKey, wire.ClientMessage{ID: 1, Event: wire.SceneUpdate(ev)})
	gs.runner.Tick(time.Millisecond)

	ownerKinds := ownerSender.kinds()
	if ownerKinds[len(ownerKinds)-1] != wire.ServerApproval {
		t.Fatalf("expected the submitting client to receive Approval, got %v", ownerKinds)
	}

	otherKinds := otherSender.kinds()
	if otherKinds[len(otherKinds)-1] != wire.ServerSceneUpdate {
		t.Fatalf("expected the other client to receive a broadcast SceneUpdate, got %v", otherKinds)
	}

	for _, k := range ownerKinds {
		if k == wire.ServerSceneUpdate {
			t.Fatalf("submitting client should never be echoed its own SceneUpdate")
		}
	}
}

func TestSceneUpdateRejectedWhenNotPermitted(t *testing.T) {
	owner := uuid.New()
	gs, _, sc := newTestGame(t, owner)

	key, _ := NewClientKey()
	player := uuid.New()
	gs.AddClient(key, player, "carl")
	sender := &fakeSender{}
	gs.ConnectClient(key, sender)

	// Players may not rename an arbitrary layer.
	layerID := sc.NextID()
	sc.AddLayer(scene.NewLayer(layerID, "Forbidden", 5))
	ev := scene.LayerRename(layerID, "Forbidden", "Renamed")

	gs.Submit(key, wire.ClientMessage{ID: 1, Event: wire.SceneUpdate(ev)})
	gs.runner.Tick(time.Millisecond)

	if sender.last().Kind != wire.ServerRejection {
		t.Fatalf("expected rejection, got %v", sender.last().Kind)
	}
	if l := sc.Layer(layerID); l.Title != "Forbidden" {
		t.Fatalf("rejected event should not have mutated the scene")
	}
}

func TestSceneChangeSwapsCanonicalSceneAndBroadcastsPerms(t *testing.T) {
	owner := uuid.New()
	gs, proj, _ := newTestGame(t, owner)

	second := scene.NewScene(uuid.New(), proj.UUID, "Second")
	proj.AddScene(second)

	key, _ := NewClientKey()
	gs.AddClient(key, owner, "owner")
	sender := &fakeSender{}
	gs.ConnectClient(key, sender)

	gs.Submit(key, wire.ClientMessage{ID: 9, Event: wire.SceneChangeRequest(second.UUID)})
	gs.runner.Tick(time.Millisecond)

	if gs.scene != second {
		t.Fatalf("expected canonical scene to switch to the requested scene")
	}
	kinds := sender.kinds()
	foundApproval, foundPerms := false, false
	for _, k := range kinds {
		if k == wire.ServerApproval {
			foundApproval = true
		}
		if k == wire.ServerPermsChange {
			foundPerms = true
		}
	}
	if !foundApproval || !foundPerms {
		t.Fatalf("expected an approval and a perms change, got %v", kinds)
	}
}

func TestSceneChangeRejectedForUnknownScene(t *testing.T) {
	owner := uuid.New()
	gs, _, _ := newTestGame(t, owner)

	key, _ := NewClientKey()
	gs.AddClient(key, owner, "owner")
	sender := &fakeSender{}
	gs.ConnectClient(key, sender)

	gs.Submit(key, wire.ClientMessage{ID: 1, Event: wire.SceneChangeRequest(uuid.New())})
	gs.runner.Tick(time.Millisecond)

	if sender.last().Kind != wire.ServerRejection {
		t.Fatalf("expected rejection for an unknown scene, got %v", sender.last().Kind)
	}
}

func TestLayerRemoveRecreatesPlayersImplicitLayer(t *testing.T) {
	owner := uuid.New()
	gs, _, sc := newTestGame(t, owner)

	ownerKey, _ := NewClientKey()
	gs.AddClient(ownerKey, owner, "owner")
	ownerSender := &fakeSender{}
	gs.ConnectClient(ownerKey, ownerSender)

	player := uuid.New()
	playerKey, _ := NewClientKey()
	gs.AddClient(playerKey, player, "dana")

	playerUser := gs.users[player]
	layerID := gs.playerLayers[playerUser]

	ev := scene.LayerRemove(layerID)
	gs.Submit(ownerKey, wire.ClientMessage{ID: 5, Event: wire.SceneUpdate(ev)})
	gs.runner.Tick(time.Millisecond)

	found := false
	for _, l := range sc.Layers {
		if l.Title == "dana" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected dana's layer to be recreated after removal")
	}
}

func TestIdleGameDiesAndClosesClients(t *testing.T) {
	owner := uuid.New()
	gs, _, _ := newTestGame(t, owner)
	gs.idleTimeout = time.Millisecond

	key, _ := NewClientKey()
	gs.AddClient(key, owner, "owner")
	sender := &fakeSender{}
	gs.ConnectClient(key, sender)
	gs.lastActivity = time.Now().Add(-time.Hour)

	died := make(chan struct{})
	gs.SetOnDead(func() { close(died) })

	(&cleanupSystem{gs}).Update(time.Millisecond)

	select {
	case <-died:
	case <-time.After(time.Second):
		t.Fatalf("expected onDead callback to fire")
	}

	if gs.State() != Dead {
		t.Fatalf("expected game to be dead, got %v", gs.State())
	}
	sender.mu.Lock()
	closed := sender.closed
	sender.mu.Unlock()
	if !closed {
		t.Fatalf("expected the client's transport to be closed")
	}
}

func TestDieEmitsGameDiedOnBus(t *testing.T) {
	owner := uuid.New()
	gs, _, _ := newTestGame(t, owner)

	bus := event.NewBus()
	var got event.GameDied
	event.Subscribe(bus, func(e event.GameDied) { got = e })
	gs.events = bus

	gs.die()

	bus.SwapBuffers()
	bus.DispatchAll()

	if got.Key != "testkey" {
		t.Fatalf("expected GameDied for testkey, got %q", got.Key)
	}
}

func TestRequestGameOverRequiresOwner(t *testing.T) {
	owner := uuid.New()
	gs, _, _ := newTestGame(t, owner)

	player := uuid.New()
	key, _ := NewClientKey()
	gs.AddClient(key, player, "not-owner")

	if gs.RequestGameOver(player) {
		t.Fatalf("expected a non-owner to be denied")
	}
	if gs.State() != Alive {
		t.Fatalf("game should still be alive")
	}

	if !gs.RequestGameOver(owner) {
		t.Fatalf("expected the owner to be able to end the game")
	}
	if gs.State() != Dead {
		t.Fatalf("expected game to be dead after owner-requested game over")
	}
}
