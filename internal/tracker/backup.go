package tracker

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"foodlog/internal/model"
)

// SnapshotName is the vault name the log snapshot is stored under.
const SnapshotName = "log"

// snapshotVersion orders snapshots. The log is append-only, so the record
// count only ever grows.
func snapshotVersion(doc *model.Document) int64 {
	return int64(len(doc.Entries) + len(doc.Foods))
}

// Backup uploads the current log to the vault, encrypted when an encryptor
// is configured. It refuses to overwrite a newer snapshot.
// Returns the version that was stored.
func (s *Service) Backup() (int64, error) {
	if s.vault == nil {
		return 0, fmt.Errorf("no vault configured")
	}

	doc, err := s.load()
	if err != nil {
		return 0, err
	}
	version := snapshotVersion(doc)

	remote, err := s.vault.GetSnapshotVersion(s.profileID, SnapshotName)
	if err != nil {
		return 0, fmt.Errorf("checking vault snapshot version: %w", err)
	}
	if remote > version {
		return 0, fmt.Errorf("%w (local=%d, vault=%d): run restore first", ErrVaultAhead, version, remote)
	}

	plain, err := json.Marshal(doc)
	if err != nil {
		return 0, fmt.Errorf("encoding snapshot: %w", err)
	}

	payload := plain
	if s.encryptor != nil {
		var buf bytes.Buffer
		if err := s.encryptor.Encrypt(bytes.NewReader(plain), &buf); err != nil {
			return 0, fmt.Errorf("encrypting snapshot: %w", err)
		}
		payload = buf.Bytes()
	}

	if err := s.vault.PutSnapshot(s.profileID, SnapshotName, bytes.NewReader(payload), int64(len(payload)), version); err != nil {
		return 0, fmt.Errorf("uploading snapshot: %w", err)
	}

	s.logger.Info("snapshot uploaded", "version", version, "bytes", len(payload))
	return version, nil
}

// Restore replaces the local log with the vault snapshot. The passphrase
// unlocks the private key when an encryptor is configured. Unless force is
// set, a snapshot older than the local log is rejected.
func (s *Service) Restore(passphrase string, force bool) (*model.Document, error) {
	if s.vault == nil {
		return nil, fmt.Errorf("no vault configured")
	}

	var buf bytes.Buffer
	if err := s.vault.GetSnapshot(s.profileID, SnapshotName, &buf); err != nil {
		return nil, fmt.Errorf("downloading snapshot: %w", err)
	}

	plain := buf.Bytes()
	if s.encryptor != nil {
		dc, err := s.encryptor.Unlock(passphrase)
		if err != nil {
			return nil, fmt.Errorf("unlocking private key: %w", err)
		}
		var out bytes.Buffer
		if err := dc.Decrypt(bytes.NewReader(plain), &out); err != nil {
			return nil, fmt.Errorf("decrypting snapshot: %w", err)
		}
		plain = out.Bytes()
	}

	restored := model.NewDocument()
	if err := json.Unmarshal(plain, restored); err != nil {
		return nil, fmt.Errorf("%w: decoding snapshot: %w", ErrStorage, err)
	}
	if restored.Version > model.DocumentVersion {
		return nil, fmt.Errorf("%w: snapshot version %d is newer than supported %d", ErrStorage, restored.Version, model.DocumentVersion)
	}
	if err := checkDocument(restored); err != nil {
		return nil, fmt.Errorf("%w: snapshot: %w", ErrStorage, err)
	}
	s.assignIDs(restored)

	local, err := s.store.Load()
	if err != nil && !errors.Is(err, ErrStorage) {
		return nil, fmt.Errorf("loading log: %w", err)
	}
	if err == nil && !force && snapshotVersion(local) > snapshotVersion(restored) {
		return nil, fmt.Errorf("local log is ahead of the vault snapshot (local=%d, vault=%d): use --force to overwrite",
			snapshotVersion(local), snapshotVersion(restored))
	}

	if err := s.save(restored); err != nil {
		return nil, err
	}
	if err := s.mergeFoods(restored.Foods); err != nil {
		return nil, err
	}

	s.logger.Info("snapshot restored", "entries", len(restored.Entries), "foods", len(restored.Foods))
	return restored, nil
}
