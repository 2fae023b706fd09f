package game

import (
	"github.com/google/uuid"

	"github.com/owenfeik/vttserver/internal/scene"
	"github.com/owenfeik/vttserver/internal/wire"
)

// Sender is the send half of a connected transport. netsrv.Session
// satisfies this directly; tests can substitute a recording stub.
type Sender interface {
	Send(e wire.ServerEvent)
}

// client is one registered participant in a game. A client exists from
// add_client onward but has no sender until connect_client attaches the
// transport, mirroring credentials being issued (join) before the socket
// is opened (connect).
type client struct {
	key     ClientKey
	account uuid.UUID
	user    scene.Id
	name    string
	sender  Sender
}

func (c *client) send(e wire.ServerEvent) {
	if c.sender != nil {
		c.sender.Send(e)
	}
}

func (c *client) connected() bool { return c.sender != nil }
