package testutil

import (
	"time"

	"foodlog/internal/dataset"
	"foodlog/internal/encryption"
	"foodlog/internal/matcher"
	"foodlog/internal/storage"
	"foodlog/internal/tracker"
	"foodlog/internal/vault"
)

// NewTestStore creates an empty in-memory store.
func NewTestStore() *storage.MemoryStore {
	return storage.NewMemoryStore()
}

// NewTestVault creates a new in-memory vault for testing.
func NewTestVault() *vault.MemoryVault {
	return vault.NewMemoryVault("test-vault")
}

// NewTestEncryptor creates a new test encryptor for testing.
func NewTestEncryptor() *encryption.TestEncryptor {
	return encryption.NewTestEncryptor()
}

// TestService bundles a Service with the fakes behind it so tests can
// inspect or manipulate them.
type TestService struct {
	*tracker.Service
	Store     *storage.MemoryStore
	Vault     *vault.MemoryVault
	Encryptor *encryption.TestEncryptor
	Clock     *StubClock
}

// NewTestService wires a Service over Foods(), a memory store, a memory
// vault, the test encryptor, LunchClock and sequential IDs. Days are UTC.
func NewTestService() *TestService {
	ts := &TestService{
		Store:     NewTestStore(),
		Vault:     NewTestVault(),
		Encryptor: NewTestEncryptor(),
		Clock:     LunchClock(),
	}
	ts.Service = tracker.NewService(
		ts.Store,
		dataset.NewCatalog(Foods()),
		matcher.New(nil),
		ts.Vault,
		ts.Encryptor,
		tracker.NewNopLogger(),
		ts.Clock,
		NewStubIDGenerator(),
	)
	ts.Service.SetProfileID("test-profile")
	ts.Service.SetLocation(time.UTC)
	return ts
}
