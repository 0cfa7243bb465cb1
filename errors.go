package makecases

import "errors"

// Sentinel errors shared by every package. Callers match with errors.Is; packages
// wrap them with context via fmt.Errorf("%w: ...", ErrX).
var (
	// ErrInvalidParameters reports a wrong count or range for distribution,
	// correlation or request parameters. It is always raised before the engine runs.
	ErrInvalidParameters = errors.New("makecases: invalid parameters")

	// ErrConflictingInput reports structure parameters supplied while the
	// correlation structure is NONE.
	ErrConflictingInput = errors.New("makecases: conflicting input")

	// ErrDelegateExecution reports a failure inside the numeric engine. The engine's
	// own cause stays reachable through errors.Is / errors.As.
	ErrDelegateExecution = errors.New("makecases: delegate execution failed")
)
