package usecase

import "time"

const (
	// DefaultCommandTimeout bounds replay plus append for one command.
	DefaultCommandTimeout = 10 * time.Second

	// DefaultProjectionName is the cursor name of the projection engine.
	DefaultProjectionName = "default"

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour
)

// Command outcomes
const (
	OutcomeOK       = "ok"
	OutcomeInvalid  = "invalid"
	OutcomeConflict = "conflict"
	OutcomeError    = "error"
)
