package wire

import "github.com/owenfeik/vttserver/internal/codec"

// Writer, Reader, and frame read/write are shared with the persisted
// scene/project format; see internal/codec.
type Writer = codec.Writer
type Reader = codec.Reader

var (
	NewWriter  = codec.NewWriter
	NewReader  = codec.NewReader
	ReadFrame  = codec.ReadFrame
	WriteFrame = codec.WriteFrame
)
