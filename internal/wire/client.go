package wire

import (
	"fmt"

	"github.com/google/uuid"
)

// EncodeClientMessage encodes a ClientMessage as a standalone frame payload.
func EncodeClientMessage(m ClientMessage) []byte {
	w := NewWriter()
	w.WriteI64(m.ID)
	w.WriteU8(uint8(m.Event.Kind))
	switch m.Event.Kind {
	case ClientPing:
		// no fields
	case ClientSceneUpdate:
		EncodeSceneEvent(w, m.Event.SceneEvent)
	case ClientSceneChange:
		w.WriteUUID(m.Event.SceneUUID)
	}
	return w.Bytes()
}

// DecodeClientMessage decodes a ClientMessage from a frame payload produced
// by EncodeClientMessage.
func DecodeClientMessage(data []byte) (ClientMessage, error) {
	r := NewReader(data)
	id, err := r.ReadI64()
	if err != nil {
		return ClientMessage{}, err
	}
	kind, err := r.ReadU8()
	if err != nil {
		return ClientMessage{}, err
	}

	var event ClientEvent
	switch ClientEventKind(kind) {
	case ClientPing:
		event = Ping()
	case ClientSceneUpdate:
		e, err := DecodeSceneEvent(r)
		if err != nil {
			return ClientMessage{}, err
		}
		event = SceneUpdate(e)
	case ClientSceneChange:
		u, err := r.ReadUUID()
		if err != nil {
			return ClientMessage{}, err
		}
		event = ClientEvent{Kind: ClientSceneChange, SceneUUID: uuid.UUID(u)}
	default:
		return ClientMessage{}, fmt.Errorf("wire: unknown client event kind %d", kind)
	}

	return ClientMessage{ID: id, Event: event}, nil
}
