package vuetsc

import (
	"context"
	"errors"
	"fmt"
)

// Run drives CreateProgram through the hook chain: each time a hook is
// started it waits for the hook to settle and calls CreateProgram again. The
// session is reset once CreateProgram returns a program or a real error.
//
// If ctx is done while a hook is in flight, Run returns ctx's error and
// leaves the session as it is; calling Run again with the same session
// resumes the chain.
func Run(ctx context.Context, session *HookSession, opts CreateProgramOptions) (*Program, error) {
	for {
		p, err := CreateProgram(session, opts)
		var pending *HookPendingError
		if !errors.As(err, &pending) {
			if session != nil {
				session.Reset()
			}
			return p, err
		}
		if err := session.Wait(ctx); err != nil {
			return nil, fmt.Errorf("vuetsc: waiting for hook %d (%s): %w", pending.Index, pending.Ref, err)
		}
	}
}
