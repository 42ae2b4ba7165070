package domain

import "errors"

// Configuration and usage errors. These indicate a caller contract violation
// and abort the current operation.
var (
	ErrDuplicateTarget       = errors.New("target already registered")
	ErrEmptyPattern          = errors.New("pattern must not be empty")
	ErrTargetNotInPattern    = errors.New("pattern does not contain its target")
	ErrInvalidLength         = errors.New("pattern length must be positive")
	ErrInvalidCount          = errors.New("sample count must not be negative")
	ErrUnknownTarget         = errors.New("unknown target")
	ErrInvalidBudget         = errors.New("invalid partition budget")
	ErrBudgetExceedsUniverse = errors.New("partition budget exceeds number of known hostnames")
	ErrStoreSealed           = errors.New("pattern store is sealed after partitioning")
	ErrInvalidMode           = errors.New("invalid mode")
	ErrInvalidPadding        = errors.New("padding size must be at least 1")
	ErrMalformedQuery        = errors.New("malformed range query")
)

// ErrTargetMissing signals a broken generator/attacker pairing: the real
// target was not in its own candidate set.
var ErrTargetMissing = errors.New("target missing from its own attack result")
