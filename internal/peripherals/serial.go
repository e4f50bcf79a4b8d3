package peripherals

import (
	"github.com/kartoffels/kartoffels/internal/core"
	"github.com/kartoffels/kartoffels/internal/engine"
)

// Control words recognized on the serial command register, chosen well
// outside the printable/binary payload range so they never collide with
// a real output word.
const (
	serialCmdBeginBuffer uint32 = 0xFFFFFF00
	serialCmdFlush       uint32 = 0xFFFFFF01
	serialCmdAbort       uint32 = 0xFFFFFF02
)

// Serial is a double-buffered output peripheral: writes land in
// Current, or in Next while buffering, so a bot can compose a frame
// without observers seeing it half-written. Both buffers drop their
// oldest word on overflow.
type Serial struct {
	Current   []uint32
	next      []uint32
	buffering bool
}

// NewSerial creates an empty serial peripheral.
func NewSerial() *Serial {
	return &Serial{
		Current: make([]uint32, 0, engine.SerialBufferCapacity),
		next:    make([]uint32, 0, engine.SerialBufferCapacity),
	}
}

func appendCapped(buf []uint32, v uint32) []uint32 {
	if len(buf) >= engine.SerialBufferCapacity {
		copy(buf, buf[1:])
		buf = buf[:len(buf)-1]
	}
	return append(buf, v)
}

func (s *Serial) Load(offset uint32, _ *core.MmioContext) (uint32, error) {
	if offset == 0 {
		return uint32(len(s.Current)), nil
	}
	idx := int(offset/4) - 1
	if idx < 0 || idx >= len(s.Current) {
		return 0, nil
	}
	return s.Current[idx], nil
}

func (s *Serial) Store(_ uint32, val uint32, _ *core.MmioContext) error {
	switch val {
	case serialCmdBeginBuffer:
		s.buffering = true
	case serialCmdFlush:
		s.Current = s.next
		s.next = make([]uint32, 0, engine.SerialBufferCapacity)
		s.buffering = false
	case serialCmdAbort:
		s.next = make([]uint32, 0, engine.SerialBufferCapacity)
		s.buffering = false
	default:
		if s.buffering {
			s.next = appendCapped(s.next, val)
		} else {
			s.Current = appendCapped(s.Current, val)
		}
	}
	return nil
}

func (s *Serial) Advance() {}

// Snapshot returns an immutable copy of the currently visible output.
func (s *Serial) Snapshot() []uint32 {
	out := make([]uint32, len(s.Current))
	copy(out, s.Current)
	return out
}
