package storage

import (
	"fmt"
	"os"
	"sync/atomic"

	"golang.org/x/sys/unix"

	"github.com/kartoffels/kartoffels/internal/bufpool"
	"github.com/kartoffels/kartoffels/internal/interfaces"
)

var _ interfaces.Storage = (*FileStorage)(nil)

// FileStorage persists a world to a single path on disk, writing through
// a temporary file and renaming over the target so a crash mid-write
// never leaves a corrupt save behind.
type FileStorage struct {
	path     string
	inFlight atomic.Bool
}

// NewFileStorage creates a FileStorage backed by path.
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

// Load reads the file whole. A missing file is reported as an *os.PathError
// the caller can inspect with os.IsNotExist.
func (f *FileStorage) Load() ([]byte, error) {
	return os.ReadFile(f.path)
}

// Save writes data to "<path>.new", flushes it, then renames it over
// path. A Save that starts while another is still in flight writes
// nothing and returns ErrSaveInProgress.
func (f *FileStorage) Save(data []byte) error {
	if !f.inFlight.CompareAndSwap(false, true) {
		return ErrSaveInProgress
	}
	defer f.inFlight.Store(false)

	// Save bodies for a busy world can run into the low megabytes once
	// every bot's firmware image is included; pool the write buffer rather
	// than let each autosave hand a fresh one to the GC.
	buf := bufpool.Get(len(data))
	defer bufpool.Put(buf)
	copy(buf, data)

	tmp := f.path + ".new"
	file, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("opening temp save file: %w", err)
	}
	if _, err := file.Write(buf); err != nil {
		file.Close()
		return fmt.Errorf("writing temp save file: %w", err)
	}
	if err := unix.Fsync(int(file.Fd())); err != nil {
		file.Close()
		return fmt.Errorf("flushing temp save file: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("closing temp save file: %w", err)
	}
	if err := unix.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("renaming temp save file into place: %w", err)
	}
	return nil
}

// Close is a no-op: FileStorage holds no open handle between calls.
func (f *FileStorage) Close() error { return nil }
