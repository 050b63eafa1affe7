package vault

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"foodlog/internal/tracker"
)

// MemoryVault keeps snapshots in memory. Useful for tests and dry runs.
// Safe for concurrent use.
type MemoryVault struct {
	name     string
	data     map[string][]byte // "profileID/name" -> snapshot
	versions map[string]int64  // "profileID/name" -> version
	mu       sync.RWMutex
}

// NewMemoryVault creates a new in-memory vault with the given name.
func NewMemoryVault(name string) *MemoryVault {
	return &MemoryVault{
		name:     name,
		data:     make(map[string][]byte),
		versions: make(map[string]int64),
	}
}

func snapshotKey(profileID, name string) string {
	return profileID + "/" + name
}

// PutSnapshot stores a named snapshot for a profile.
func (m *MemoryVault) PutSnapshot(profileID string, name string, r io.Reader, size int64, version int64) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}

	if int64(len(data)) != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, len(data))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := snapshotKey(profileID, name)
	m.data[key] = data
	m.versions[key] = version
	return nil
}

// GetSnapshot writes a stored snapshot to w.
func (m *MemoryVault) GetSnapshot(profileID string, name string, w io.Writer) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.data[snapshotKey(profileID, name)]
	if !ok {
		return fmt.Errorf("snapshot %q not found for profile: %s", name, profileID)
	}

	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// GetSnapshotVersion returns 0 if nothing has been stored for this profile/name.
func (m *MemoryVault) GetSnapshotVersion(profileID string, name string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.versions[snapshotKey(profileID, name)], nil
}

// ValidateSetup always succeeds for in-memory vault.
func (m *MemoryVault) ValidateSetup() error {
	return nil
}

var _ tracker.Vault = (*MemoryVault)(nil)
