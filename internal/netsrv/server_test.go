package netsrv

import (
	"net"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/owenfeik/vttserver/internal/wire"
)

func TestServerAcceptsAndFramesConnections(t *testing.T) {
	srv, err := NewServer("127.0.0.1:0", 4, 4, zap.NewNop())
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	go srv.AcceptLoop()
	defer srv.Shutdown()

	conn, err := net.Dial("tcp", srv.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if err := wire.WriteFrame(conn, []byte("abcde01234 0123456789abcdef")); err != nil {
		t.Fatalf("write handshake: %v", err)
	}

	var sess *Session
	select {
	case sess = <-srv.NewSessions():
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for accepted session")
	}

	if sess.GameKey != "abcde01234" || sess.ClientKey != "0123456789abcdef" {
		t.Fatalf("unexpected handshake identity: game=%q client=%q", sess.GameKey, sess.ClientKey)
	}

	payload := wire.EncodeClientMessage(wire.ClientMessage{ID: 1, Event: wire.Ping()})
	if err := wire.WriteFrame(conn, payload); err != nil {
		t.Fatalf("write frame: %v", err)
	}

	select {
	case msg := <-sess.InQueue:
		if msg.Event.Kind != wire.ClientPing {
			t.Fatalf("unexpected event kind %v", msg.Event.Kind)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for decoded message")
	}
}

func TestServerRejectsMalformedHandshake(t *testing.T) {
	srv, err := NewServer("127.0.0.1:0", 4, 4, zap.NewNop())
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	go srv.AcceptLoop()
	defer srv.Shutdown()

	conn, err := net.Dial("tcp", srv.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if err := wire.WriteFrame(conn, []byte("not-a-valid-handshake")); err != nil {
		t.Fatalf("write handshake: %v", err)
	}

	select {
	case sess := <-srv.NewSessions():
		t.Fatalf("expected malformed handshake to be rejected, got session %v", sess)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestServerNotifyDead(t *testing.T) {
	srv, err := NewServer("127.0.0.1:0", 1, 1, zap.NewNop())
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	defer srv.Shutdown()

	srv.NotifyDead(9)
	select {
	case id := <-srv.DeadSessions():
		if id != 9 {
			t.Fatalf("expected dead id 9, got %d", id)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for dead notification")
	}
}
