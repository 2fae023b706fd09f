package netsrv

import (
	"net"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/owenfeik/vttserver/internal/wire"
)

func TestSessionRoundTripsClientMessages(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()

	sess := NewSession(server, 1, 4, 4, zap.NewNop())
	sess.Start()
	defer sess.Close()

	msg := wire.ClientMessage{ID: 7, Event: wire.Ping()}
	payload := wire.EncodeClientMessage(msg)
	go func() {
		if err := wire.WriteFrame(client, payload); err != nil {
			t.Errorf("write frame: %v", err)
		}
	}()

	select {
	case got := <-sess.InQueue:
		if got.ID != 7 || got.Event.Kind != wire.ClientPing {
			t.Fatalf("unexpected message: %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for decoded message")
	}
}

func TestSessionSendWritesServerEvent(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()

	sess := NewSession(server, 2, 4, 4, zap.NewNop())
	sess.Start()
	defer sess.Close()

	sess.Send(wire.Approval(42))

	payload, err := wire.ReadFrame(client)
	if err != nil {
		t.Fatalf("read frame: %v", err)
	}
	e, err := wire.DecodeServerEvent(payload)
	if err != nil {
		t.Fatalf("decode server event: %v", err)
	}
	if e.Kind != wire.ServerApproval || e.MessageID != 42 {
		t.Fatalf("unexpected event: %+v", e)
	}
}

func TestSessionCloseStopsLoops(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()

	sess := NewSession(server, 3, 4, 4, zap.NewNop())
	sess.Start()
	sess.Close()

	if !sess.IsClosed() {
		t.Fatal("expected session to report closed")
	}

	// A second Close must not panic on the already-closed channel.
	sess.Close()
}
