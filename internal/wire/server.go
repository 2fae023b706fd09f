package wire

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/owenfeik/vttserver/internal/scene"
	"github.com/owenfeik/vttserver/internal/serialize"
)

// EncodeServerEvent encodes a ServerEvent as a standalone frame payload.
func EncodeServerEvent(e ServerEvent) []byte {
	w := NewWriter()
	encodeServerEvent(w, e)
	return w.Bytes()
}

func encodeServerEvent(w *Writer, e ServerEvent) {
	w.WriteU8(uint8(e.Kind))
	switch e.Kind {
	case ServerApproval, ServerRejection:
		w.WriteI64(e.MessageID)

	case ServerEventSet:
		w.WriteU32(uint32(len(e.Events)))
		for _, sub := range e.Events {
			encodeServerEvent(w, sub)
		}

	case ServerGameOver, ServerDisconnect, ServerHealthCheck:
		// no fields

	case ServerPermsChange:
		writePerms(w, e.Perms)

	case ServerPermsUpdate:
		writePermsEvent(w, e.PermsEvent)

	case ServerSceneChange:
		w.WriteBytes(serialize.EncodeScene(e.Scene))

	case ServerSceneList:
		w.WriteU32(uint32(len(e.SceneList)))
		for _, entry := range e.SceneList {
			w.WriteUUID(entry.UUID)
			w.WriteString(entry.Title)
		}

	case ServerSceneUpdate:
		EncodeSceneEvent(w, e.SceneEvent)

	case ServerSelectedLayer:
		w.WriteI64(int64(e.LayerID))

	case ServerUserID:
		w.WriteUUID(e.UserID)
	}
}

// DecodeServerEvent decodes a ServerEvent from a frame payload produced by
// EncodeServerEvent.
func DecodeServerEvent(data []byte) (ServerEvent, error) {
	return decodeServerEvent(NewReader(data))
}

func decodeServerEvent(r *Reader) (ServerEvent, error) {
	kind, err := r.ReadU8()
	if err != nil {
		return ServerEvent{}, err
	}

	switch ServerEventKind(kind) {
	case ServerApproval:
		id, err := r.ReadI64()
		if err != nil {
			return ServerEvent{}, err
		}
		return Approval(id), nil

	case ServerRejection:
		id, err := r.ReadI64()
		if err != nil {
			return ServerEvent{}, err
		}
		return Rejection(id), nil

	case ServerEventSet:
		n, err := r.ReadU32()
		if err != nil {
			return ServerEvent{}, err
		}
		events := make([]ServerEvent, n)
		for i := range events {
			events[i], err = decodeServerEvent(r)
			if err != nil {
				return ServerEvent{}, err
			}
		}
		set, ok := SetServerEvents(events)
		if !ok {
			return ServerEvent{}, fmt.Errorf("wire: empty server event set")
		}
		return set, nil

	case ServerGameOver:
		return GameOver(), nil
	case ServerDisconnect:
		return Disconnect(), nil
	case ServerHealthCheck:
		return HealthCheck(), nil

	case ServerPermsChange:
		p, err := readPerms(r)
		if err != nil {
			return ServerEvent{}, err
		}
		return PermsChange(p), nil

	case ServerPermsUpdate:
		e, err := readPermsEvent(r)
		if err != nil {
			return ServerEvent{}, err
		}
		return PermsUpdate(e), nil

	case ServerSceneChange:
		raw, err := r.ReadBytes()
		if err != nil {
			return ServerEvent{}, err
		}
		s, err := serialize.DecodeScene(raw)
		if err != nil {
			return ServerEvent{}, err
		}
		return SceneChange(s), nil

	case ServerSceneList:
		n, err := r.ReadU32()
		if err != nil {
			return ServerEvent{}, err
		}
		entries := make([]scene.SceneListEntry, n)
		for i := range entries {
			id, err := r.ReadUUID()
			if err != nil {
				return ServerEvent{}, err
			}
			title, err := r.ReadString()
			if err != nil {
				return ServerEvent{}, err
			}
			entries[i] = scene.SceneListEntry{UUID: uuid.UUID(id), Title: title}
		}
		return SceneList(entries), nil

	case ServerSceneUpdate:
		e, err := DecodeSceneEvent(r)
		if err != nil {
			return ServerEvent{}, err
		}
		return SceneUpdate(e), nil

	case ServerSelectedLayer:
		id, err := r.ReadI64()
		if err != nil {
			return ServerEvent{}, err
		}
		return SelectedLayer(scene.Id(id)), nil

	case ServerUserID:
		id, err := r.ReadUUID()
		if err != nil {
			return ServerEvent{}, err
		}
		return UserID(uuid.UUID(id)), nil
	}

	return ServerEvent{}, fmt.Errorf("wire: unknown server event kind %d", kind)
}
