// Package storage implements the world save-file format: a fixed
// header, a CBOR body, atomic file writes, and the version migration
// chain loads run before handing data back to the engine.
package storage

import (
	"encoding/binary"
	"fmt"

	"github.com/kartoffels/kartoffels/internal/engine"
)

// EncodeHeader returns the 16-byte header for a save file at the given
// version: an 11-byte magic, a big-endian u32 version, and a zero pad byte.
func EncodeHeader(version uint32) []byte {
	hdr := make([]byte, engine.SaveHeaderSize)
	copy(hdr, engine.SaveMagic[:])
	binary.BigEndian.PutUint32(hdr[engine.SaveMagicSize:], version)
	// hdr[len(hdr)-1] is already zero: the pad byte.
	return hdr
}

// DecodeHeader validates the magic and pad byte and returns the version
// and the remaining body bytes.
func DecodeHeader(data []byte) (version uint32, body []byte, err error) {
	if len(data) < engine.SaveHeaderSize {
		return 0, nil, fmt.Errorf("save file too short: %d bytes", len(data))
	}
	var magic [engine.SaveMagicSize]byte
	copy(magic[:], data[:engine.SaveMagicSize])
	if magic != engine.SaveMagic {
		return 0, nil, fmt.Errorf("%w: got %q", ErrMagicMismatch, magic)
	}
	version = binary.BigEndian.Uint32(data[engine.SaveMagicSize:])
	pad := data[engine.SaveHeaderSize-1]
	if pad != 0 {
		return 0, nil, fmt.Errorf("save header pad byte must be zero, got %d", pad)
	}
	if version > engine.CurrentSaveVersion {
		return 0, nil, fmt.Errorf("%w: %d (max supported %d)", ErrUnsupportedVersion, version, engine.CurrentSaveVersion)
	}
	return version, data[engine.SaveHeaderSize:], nil
}
