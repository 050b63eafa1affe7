package tracker

import "errors"

// Error kinds surfaced to the CLI and HTTP layers. Callers match with errors.Is.
var (
	// ErrInvalidInput reports an empty query or a food with missing or negative fields.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidQuantity reports a quantity that is not a positive finite number.
	ErrInvalidQuantity = errors.New("invalid quantity")

	// ErrDuplicateFood reports a case-insensitive name collision on add.
	ErrDuplicateFood = errors.New("duplicate food")

	// ErrNoMatch reports that no food matched a query or name.
	ErrNoMatch = errors.New("no matching food")

	// ErrStorage reports an I/O failure or corrupt persisted data.
	ErrStorage = errors.New("storage error")

	// ErrVaultAhead reports that the vault holds a newer snapshot than the local log.
	ErrVaultAhead = errors.New("vault snapshot is newer than local log")
)
