package spvstore

import (
	"fmt"

	"golang.org/x/sys/unix"

	fileio "github.com/dot5enko/spvstore/io"
)

// mappedFile owns the lifecycle of the backing file: exclusive process
// lock, file-size management, and the memory mapping over it. Only one
// live mappedFile may hold the lock for a given path at a time — a second
// concurrent open fails immediately with ErrFileLocked.
type mappedFile struct {
	file   *fileio.File
	region []byte
}

// openLocked opens (creating if absent) and takes an exclusive,
// non-blocking lock on path. The caller decides the mapped size
// afterwards, since that may depend on bytes read from the file itself
// (the prologue) before a mapping is established.
func openLocked(path string) (*fileio.File, error) {
	f := fileio.NewFile(path)
	if err := f.Open(0644); err != nil {
		return nil, fmt.Errorf("spvstore: open file: %w", err)
	}

	if err := unix.Flock(int(f.Raw().Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		if err == unix.EWOULDBLOCK {
			return nil, ErrFileLocked
		}
		return nil, fmt.Errorf("spvstore: flock: %w", err)
	}

	return f, nil
}

// mapFile grows f to at least size (never shrinks) and maps the first
// size bytes of it.
func mapFile(f *fileio.File, size int64) (*mappedFile, error) {
	currentSize, err := f.Size()
	if err != nil {
		unlockAndClose(f)
		return nil, err
	}

	if currentSize < size {
		if err := f.Truncate(size); err != nil {
			unlockAndClose(f)
			return nil, fmt.Errorf("spvstore: truncate: %w", err)
		}
	}

	region, err := unix.Mmap(int(f.Raw().Fd()), 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		unlockAndClose(f)
		return nil, fmt.Errorf("spvstore: mmap: %w", err)
	}

	return &mappedFile{file: f, region: region}, nil
}

// grow re-maps the file after extending it to newSize. Shrinking is never
// performed here; callers must have already rejected shrink requests.
func (m *mappedFile) grow(newSize int64) error {
	if err := unix.Munmap(m.region); err != nil {
		return fmt.Errorf("spvstore: munmap: %w", err)
	}

	if err := m.file.Truncate(newSize); err != nil {
		return fmt.Errorf("spvstore: truncate: %w", err)
	}

	region, err := unix.Mmap(int(m.file.Raw().Fd()), 0, int(newSize), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return fmt.Errorf("spvstore: mmap: %w", err)
	}

	m.region = region
	return nil
}

func (m *mappedFile) flush() error {
	return unix.Msync(m.region, unix.MS_SYNC)
}

func (m *mappedFile) close() error {
	flushErr := m.flush()
	unmapErr := unix.Munmap(m.region)
	unix.Flock(int(m.file.Raw().Fd()), unix.LOCK_UN)
	closeErr := m.file.Close()

	switch {
	case flushErr != nil:
		return fmt.Errorf("spvstore: flush on close: %w", flushErr)
	case unmapErr != nil:
		return fmt.Errorf("spvstore: munmap on close: %w", unmapErr)
	case closeErr != nil:
		return fmt.Errorf("spvstore: close file: %w", closeErr)
	default:
		return nil
	}
}

func unlockAndClose(f *fileio.File) {
	unix.Flock(int(f.Raw().Fd()), unix.LOCK_UN)
	f.Close()
}
