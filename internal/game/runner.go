package game

import (
	"context"
	"time"

	"github.com/owenfeik/vttserver/internal/core/event"
	"github.com/owenfeik/vttserver/internal/core/system"
	"github.com/owenfeik/vttserver/internal/wire"
)

// runner ticks a GameServer's five systems in phase order: Input drains the
// inbox, Update applies queued messages against perms and the scene,
// Output flushes whatever that produced to clients, Persist saves on its
// own interval, Cleanup evicts an idle game. This is the teacher's ECS
// Runner/Phase abstraction retargeted from a tick loop over components to
// a tick loop over one game's connections.
type runner struct {
	*system.Runner
}

func newRunner(gs *GameServer) *runner {
	r := system.NewRunner()
	r.Register(&inputSystem{gs})
	r.Register(&applySystem{gs})
	r.Register(&broadcastSystem{gs})
	r.Register(&persistSystem{gs})
	r.Register(&cleanupSystem{gs})
	return &runner{r}
}

type inputSystem struct{ gs *GameServer }

func (s *inputSystem) Phase() system.Phase { return system.PhaseInput }

func (s *inputSystem) Update(dt time.Duration) {
	gs := s.gs
	for {
		select {
		case m := <-gs.inbox:
			gs.pending = append(gs.pending, m)
		default:
			return
		}
	}
}

type applySystem struct{ gs *GameServer }

func (s *applySystem) Phase() system.Phase { return system.PhaseUpdate }

func (s *applySystem) Update(dt time.Duration) {
	gs := s.gs
	if len(gs.pending) == 0 {
		return
	}
	for _, m := range gs.pending {
		gs.applyInbound(m)
	}
	gs.pending = gs.pending[:0]
}

type broadcastSystem struct{ gs *GameServer }

func (s *broadcastSystem) Phase() system.Phase { return system.PhaseOutput }

func (s *broadcastSystem) Update(dt time.Duration) {
	gs := s.gs
	gs.mu.Lock()
	gs.flushOutbox()
	gs.mu.Unlock()
}

type persistSystem struct{ gs *GameServer }

func (s *persistSystem) Phase() system.Phase { return system.PhasePersist }

func (s *persistSystem) Update(dt time.Duration) {
	gs := s.gs
	gs.mu.Lock()
	defer gs.mu.Unlock()
	if gs.state != Alive {
		return
	}
	if gs.modified && time.Since(gs.lastSaved) >= gs.saveInterval {
		gs.saveLocked(context.Background())
	}
}

type cleanupSystem struct{ gs *GameServer }

func (s *cleanupSystem) Phase() system.Phase { return system.PhaseCleanup }

func (s *cleanupSystem) Update(dt time.Duration) {
	gs := s.gs
	gs.mu.RLock()
	idle := gs.state == Alive && time.Since(gs.lastActivity) > gs.idleTimeout
	gs.mu.RUnlock()
	if idle {
		gs.die()
	}
}

// closeClients closes every connected client's transport, if it exposes a
// Close method (netsrv.Session does). Caller must hold mu.
func (gs *GameServer) closeClients() {
	for _, c := range gs.clients {
		if c.sender == nil {
			continue
		}
		if closer, ok := c.sender.(interface{ Close() }); ok {
			closer.Close()
		}
	}
}

// die moves an Alive game through Dying to Dead: a GameOver to every
// client, one final save, transport teardown, then the registry
// deregistration callback, if one was set.
func (gs *GameServer) die() {
	gs.mu.Lock()
	if gs.state != Alive {
		gs.mu.Unlock()
		return
	}
	gs.state = Dying
	for _, c := range gs.clients {
		c.send(wire.GameOver())
	}
	gs.saveLocked(context.Background())
	gs.closeClients()
	gs.state = Dead
	onDead := gs.onDead
	events := gs.events
	key := gs.key
	gs.mu.Unlock()

	if events != nil {
		event.Emit(events, event.GameDied{Key: string(key)})
	}
	if onDead != nil {
		onDead()
	}
}

// Run starts the background tick loop in its own goroutine. Stop ends it.
func (gs *GameServer) Run() {
	go gs.loop()
}

func (gs *GameServer) loop() {
	defer close(gs.doneCh)
	ticker := time.NewTicker(gs.tickInterval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-gs.stopCh:
			return
		case now := <-ticker.C:
			dt := now.Sub(last)
			last = now
			gs.runner.Tick(dt)
			gs.mu.RLock()
			dead := gs.state == Dead
			gs.mu.RUnlock()
			if dead {
				return
			}
		}
	}
}

// Stop signals the background loop to end without waiting for it.
func (gs *GameServer) Stop() {
	select {
	case <-gs.stopCh:
	default:
		close(gs.stopCh)
	}
}

// Done reports when the background loop has returned.
func (gs *GameServer) Done() <-chan struct{} { return gs.doneCh }
