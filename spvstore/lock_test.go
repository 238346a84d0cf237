package spvstore

import (
	"path/filepath"
	"testing"
)

func TestOpenLockedThenMapFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "locked.dat")

	f, err := openLocked(path)
	if err != nil {
		t.Fatalf("openLocked: %v", err)
	}

	m, err := mapFile(f, 8192)
	if err != nil {
		t.Fatalf("mapFile: %v", err)
	}
	defer m.close()

	if len(m.region) != 8192 {
		t.Fatalf("region len = %d, want 8192", len(m.region))
	}
}

func TestSecondLockOnSamePathFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "locked.dat")

	f1, err := openLocked(path)
	if err != nil {
		t.Fatalf("first openLocked: %v", err)
	}
	defer unlockAndClose(f1)

	if _, err := openLocked(path); err != ErrFileLocked {
		t.Fatalf("second openLocked = %v, want ErrFileLocked", err)
	}
}

func TestLockReleasedAfterClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "locked.dat")

	f1, err := openLocked(path)
	if err != nil {
		t.Fatalf("openLocked: %v", err)
	}
	m1, err := mapFile(f1, 4096)
	if err != nil {
		t.Fatalf("mapFile: %v", err)
	}
	if err := m1.close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	f2, err := openLocked(path)
	if err != nil {
		t.Fatalf("reopen after close should succeed, got: %v", err)
	}
	unlockAndClose(f2)
}

func TestMappedFileGrow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grow.dat")

	f, err := openLocked(path)
	if err != nil {
		t.Fatalf("openLocked: %v", err)
	}
	m, err := mapFile(f, 4096)
	if err != nil {
		t.Fatalf("mapFile: %v", err)
	}
	defer m.close()

	if err := m.grow(8192); err != nil {
		t.Fatalf("grow: %v", err)
	}
	if len(m.region) != 8192 {
		t.Fatalf("region len after grow = %d, want 8192", len(m.region))
	}
}
