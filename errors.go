package vuetsc

import (
	"errors"
	"fmt"
)

// ErrHookPending is matched by *HookPendingError.
var ErrHookPending = errors.New("vuetsc: hook pending")

// ConfigError reports an unsupported or incomplete configuration. It is not
// retryable.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return "vuetsc: " + e.Message
}

// HookPendingError is returned by CreateProgram after it starts a hook, or
// while the started hook has not settled. It is a control signal: wait on the
// HookSession and call CreateProgram again.
type HookPendingError struct {
	Index int
	Ref   string
}

func (e *HookPendingError) Error() string {
	return fmt.Sprintf("vuetsc: hook %d (%s) pending", e.Index, e.Ref)
}

// Is reports whether target is ErrHookPending.
func (e *HookPendingError) Is(target error) bool {
	return target == ErrHookPending
}

// HookError reports a hook that could not be resolved or that failed.
type HookError struct {
	Index int
	Ref   string
	Err   error
}

func (e *HookError) Error() string {
	return fmt.Sprintf("vuetsc: hook %d (%s): %v", e.Index, e.Ref, e.Err)
}

func (e *HookError) Unwrap() error {
	return e.Err
}

// IsHookPending reports whether err is the hook-pending control signal.
func IsHookPending(err error) bool {
	return errors.Is(err, ErrHookPending)
}
