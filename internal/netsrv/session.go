// Package netsrv accepts TCP connections and turns each into a Session:
// a duplex stream of wire.ClientMessage in, wire.ServerEvent out, with
// reader and writer goroutines doing the framing so a GameServer never
// touches net.Conn directly.
package netsrv

import (
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/owenfeik/vttserver/internal/wire"
)

// Session represents a single client connection. Network I/O runs in
// dedicated goroutines; game state is touched only from the owning
// GameServer's own goroutine, which reads InQueue and writes OutQueue.
type Session struct {
	ID   uint64
	conn net.Conn

	// GameKey and ClientKey are set from the connect frame read by the
	// Server's handshake before Start is called; they name the game and
	// client identity this session was issued by join_game.
	GameKey   string
	ClientKey string

	InQueue  chan wire.ClientMessage // the game loop reads messages from here
	OutQueue chan wire.ServerEvent   // the writer goroutine reads events from here

	IP string

	closeCh   chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool

	log *zap.Logger
}

func NewSession(conn net.Conn, id uint64, inSize, outSize int, log *zap.Logger) *Session {
	return &Session{
		ID:       id,
		conn:     conn,
		InQueue:  make(chan wire.ClientMessage, inSize),
		OutQueue: make(chan wire.ServerEvent, outSize),
		IP:       conn.RemoteAddr().String(),
		closeCh:  make(chan struct{}),
		log:      log.With(zap.Uint64("session", id)),
	}
}

// Start launches the reader and writer goroutines.
func (s *Session) Start() {
	go s.readLoop()
	go s.writeLoop()
}

// Send queues an event for the writer goroutine. Non-blocking: a full
// OutQueue means a slow or stuck client, and the session is disconnected
// rather than let one client back up the whole game.
func (s *Session) Send(e wire.ServerEvent) {
	if s.closed.Load() {
		return
	}
	select {
	case s.OutQueue <- e:
	default:
		s.log.Warn("output queue full, dropping slow session")
		s.Close()
	}
}

func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		close(s.closeCh)
		s.conn.Close()
	})
}

func (s *Session) IsClosed() bool {
	return s.closed.Load()
}

// Done reports when the session has closed, so a consumer pumping
// InQueue knows when to stop without polling IsClosed.
func (s *Session) Done() <-chan struct{} {
	return s.closeCh
}

// readLoop reads frames from the connection, decodes them as
// ClientMessages, and pushes them onto InQueue for the game loop. A
// full InQueue blocks the read rather than drop: a dropped scene edit
// desyncs the client's local replica from the canonical scene just as
// surely as a dropped movement packet would in a realtime game, so
// backpressure falls on this session alone rather than discarding the
// message.
func (s *Session) readLoop() {
	defer s.Close()

	for {
		select {
		case <-s.closeCh:
			return
		default:
		}

		payload, err := wire.ReadFrame(s.conn)
		if err != nil {
			if !s.closed.Load() {
				s.log.Debug("read error", zap.Error(err))
			}
			return
		}

		msg, err := wire.DecodeClientMessage(payload)
		if err != nil {
			s.log.Warn("malformed client message", zap.Error(err))
			return
		}

		select {
		case s.InQueue <- msg:
		case <-s.closeCh:
			return
		}
	}
}

// writeLoop reads events from OutQueue, encodes them, and writes them as
// framed data to the connection.
func (s *Session) writeLoop() {
	defer s.Close()

	for {
		select {
		case e := <-s.OutQueue:
			data := wire.EncodeServerEvent(e)
			s.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := wire.WriteFrame(s.conn, data); err != nil {
				if !s.closed.Load() {
					s.log.Debug("write error", zap.Error(err))
				}
				return
			}
		case <-s.closeCh:
			return
		}
	}
}

func (s *Session) String() string {
	return fmt.Sprintf("session(%d, %s)", s.ID, s.IP)
}
