package contracts

import "errors"

// Error kinds shared by every layer.
// ⭐ SSOT: wrap these with fmt.Errorf("...: %w", err) and test with errors.Is
var (
	// ErrInvalidArgument rejects caller input (budget ≤ 0, limit outside (0,1], shares ≤ 0)
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUpstreamUnavailable marks a failed or unconfigured external dependency
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrUnknownSector is returned for sectors missing from the universe
	ErrUnknownSector = errors.New("unknown sector")

	// ErrDuplicateHolding is returned when a symbol is already held
	ErrDuplicateHolding = errors.New("holding already exists")

	// ErrHoldingNotFound is returned when removing a symbol that is not held
	ErrHoldingNotFound = errors.New("holding not found")
)
