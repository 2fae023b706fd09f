package netsrv

import (
	"fmt"
	"net"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/owenfeik/vttserver/internal/wire"
)

// handshakeTimeout bounds how long a newly accepted connection has to send
// its connect frame before it is dropped.
const handshakeTimeout = 5 * time.Second

// Server accepts TCP connections and creates Sessions. New and dead
// sessions are communicated to the owning registry via channels, so the
// accept loop never blocks on game logic.
type Server struct {
	listener net.Listener
	nextID   atomic.Uint64
	newConns chan *Session
	deadCh   chan uint64 // session IDs of dead sessions
	inSize   int
	outSize  int
	log      *zap.Logger
	closeCh  chan struct{}
}

func NewServer(bindAddr string, inSize, outSize int, log *zap.Logger) (*Server, error) {
	ln, err := net.Listen("tcp", bindAddr)
	if err != nil {
		return nil, err
	}
	s := &Server{
		listener: ln,
		newConns: make(chan *Session, 64),
		deadCh:   make(chan uint64, 64),
		inSize:   inSize,
		outSize:  outSize,
		log:      log,
		closeCh:  make(chan struct{}),
	}
	return s, nil
}

// AcceptLoop runs in its own goroutine. It accepts connections and hands
// each to its own handshake goroutine, so one slow or malicious client
// reading its connect frame never blocks other connections from being
// accepted.
func (s *Server) AcceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.closeCh:
				return
			default:
			}
			s.log.Error("accept failed", zap.Error(err))
			continue
		}

		id := s.nextID.Add(1)
		go s.handshake(conn, id)
	}
}

// handshake reads the one connect frame a client must send before any
// wire.ClientMessage traffic: "<GameKey> <ClientKey>", naming the game and
// client identity ConnectClient was handed out for. This is the realization
// of the opaque transport URL's connect operation (SPEC_FULL.md §6) at the
// raw-socket layer, since a bare TCP stream carries no URL for a router to
// have already parsed. Only once this succeeds does the Session's ordinary
// reader/writer loops start.
func (s *Server) handshake(conn net.Conn, id uint64) {
	conn.SetReadDeadline(time.Now().Add(handshakeTimeout))
	payload, err := wire.ReadFrame(conn)
	if err != nil {
		s.log.Debug("handshake read failed", zap.Error(err))
		conn.Close()
		return
	}
	conn.SetReadDeadline(time.Time{})

	gameKey, clientKey, ok := parseHandshake(string(payload))
	if !ok {
		s.log.Warn("malformed connect frame")
		conn.Close()
		return
	}

	sess := NewSession(conn, id, s.inSize, s.outSize, s.log)
	sess.GameKey = gameKey
	sess.ClientKey = clientKey
	sess.Start()

	s.log.Info(fmt.Sprintf("client connected  session=%d  ip=%s  game=%s", id, sess.IP, gameKey))

	select {
	case s.newConns <- sess:
	default:
		s.log.Warn("connection queue full, rejecting new connection")
		sess.Close()
	}
}

func parseHandshake(payload string) (gameKey, clientKey string, ok bool) {
	fields := strings.Fields(payload)
	if len(fields) != 2 {
		return "", "", false
	}
	return fields[0], fields[1], true
}

// NewSessions returns the channel of newly connected sessions.
func (s *Server) NewSessions() <-chan *Session {
	return s.newConns
}

// NotifyDead reports a dead session ID to the registry.
func (s *Server) NotifyDead(sessionID uint64) {
	select {
	case s.deadCh <- sessionID:
	default:
	}
}

// DeadSessions returns the channel of dead session IDs.
func (s *Server) DeadSessions() <-chan uint64 {
	return s.deadCh
}

// Shutdown stops accepting new connections.
func (s *Server) Shutdown() {
	close(s.closeCh)
	s.listener.Close()
}

// Addr returns the listener's address.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}
