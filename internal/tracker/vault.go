package tracker

import "io"

// Vault stores offsite snapshots of the food log.
// All operations stream through io.Reader/io.Writer.
type Vault interface {
	// PutSnapshot stores a named snapshot for a profile.
	// size is the number of bytes that will be read from r.
	// version is stored alongside the snapshot for consistency checks.
	PutSnapshot(profileID string, name string, r io.Reader, size int64, version int64) error

	// GetSnapshot retrieves a named snapshot for a profile and writes it to w.
	GetSnapshot(profileID string, name string, w io.Writer) error

	// GetSnapshotVersion returns the version of a named snapshot.
	// Returns 0 if nothing has been stored for this profile/name.
	GetSnapshotVersion(profileID string, name string) (int64, error)

	// ValidateSetup verifies that the vault is accessible and properly configured.
	ValidateSetup() error
}
