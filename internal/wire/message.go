// Package wire defines the message types exchanged between a game client
// and its GameServer, and the binary framing used to carry them over a
// session's duplex byte stream.
package wire

import (
	"github.com/google/uuid"
	"github.com/owenfeik/vttserver/internal/perms"
	"github.com/owenfeik/vttserver/internal/scene"
)

// ClientEventKind tags a ClientEvent's variant.
type ClientEventKind int

const (
	ClientPing ClientEventKind = iota
	ClientSceneUpdate
	ClientSceneChange
)

// ClientEvent is a tagged union of every message a client may send.
type ClientEvent struct {
	Kind       ClientEventKind
	SceneEvent scene.SceneEvent
	SceneUUID  uuid.UUID
}

func Ping() ClientEvent { return ClientEvent{Kind: ClientPing} }

func SceneUpdate(e scene.SceneEvent) ClientEvent {
	return ClientEvent{Kind: ClientSceneUpdate, SceneEvent: e}
}

func SceneChangeRequest(scene uuid.UUID) ClientEvent {
	return ClientEvent{Kind: ClientSceneChange, SceneUUID: scene}
}

// ClientMessage pairs a client-assigned id with the event it names, so the
// server's Approval/Rejection can reference exactly which message it
// concerns and the client can unwind a rejected optimistic edit.
type ClientMessage struct {
	ID    int64
	Event ClientEvent
}

// ServerEventKind tags a ServerEvent's variant.
type ServerEventKind int

const (
	ServerApproval ServerEventKind = iota
	ServerRejection
	ServerEventSet
	ServerGameOver
	ServerDisconnect
	ServerHealthCheck
	ServerPermsChange
	ServerPermsUpdate
	ServerSceneChange
	ServerSceneList
	ServerSceneUpdate
	ServerSelectedLayer
	ServerUserID
)

// ServerEvent is a tagged union of every message the server may send: either
// an acknowledgement of a client message, or a propagated change.
type ServerEvent struct {
	Kind ServerEventKind

	MessageID int64 // Approval, Rejection

	Events []ServerEvent // EventSet

	Perms      *perms.Perms   // PermsChange
	PermsEvent perms.PermsEvent // PermsUpdate

	Scene     *scene.Scene          // SceneChange
	SceneList []scene.SceneListEntry // SceneList

	SceneEvent scene.SceneEvent // SceneUpdate

	LayerID scene.Id  // SelectedLayer
	UserID  uuid.UUID // UserId
}

func Approval(id int64) ServerEvent { return ServerEvent{Kind: ServerApproval, MessageID: id} }
func Rejection(id int64) ServerEvent { return ServerEvent{Kind: ServerRejection, MessageID: id} }

// SetServerEvents returns nil if events is empty, the lone element if
// length 1, else a ServerEventSet wrapping the whole slice.
func SetServerEvents(events []ServerEvent) (ServerEvent, bool) {
	switch len(events) {
	case 0:
		return ServerEvent{}, false
	case 1:
		return events[0], true
	default:
		return ServerEvent{Kind: ServerEventSet, Events: events}, true
	}
}

func GameOver() ServerEvent    { return ServerEvent{Kind: ServerGameOver} }
func Disconnect() ServerEvent  { return ServerEvent{Kind: ServerDisconnect} }
func HealthCheck() ServerEvent { return ServerEvent{Kind: ServerHealthCheck} }

func PermsChange(p *perms.Perms) ServerEvent {
	return ServerEvent{Kind: ServerPermsChange, Perms: p}
}

func PermsUpdate(e perms.PermsEvent) ServerEvent {
	return ServerEvent{Kind: ServerPermsUpdate, PermsEvent: e}
}

func SceneChange(s *scene.Scene) ServerEvent {
	return ServerEvent{Kind: ServerSceneChange, Scene: s}
}

func SceneList(entries []scene.SceneListEntry) ServerEvent {
	return ServerEvent{Kind: ServerSceneList, SceneList: entries}
}

func SceneUpdate(e scene.SceneEvent) ServerEvent {
	return ServerEvent{Kind: ServerSceneUpdate, SceneEvent: e}
}

func SelectedLayer(layer scene.Id) ServerEvent {
	return ServerEvent{Kind: ServerSelectedLayer, LayerID: layer}
}

func UserID(user uuid.UUID) ServerEvent {
	return ServerEvent{Kind: ServerUserID, UserID: user}
}
