package terminal

import "log/slog"

// resolvePassword consumes the single input a password prompt waits for.
// Verbatim match applies the pending privileged patch; anything else clears
// the prompt with a failure line. One attempt, no lockout, no retry counter.
func (e *Engine) resolvePassword(input string) Result {
	pp := *e.state.PasswordPrompt

	if input != pp.Expected {
		slog.Debug("password authentication failed", "command", pp.Command)
		return Result{
			Output:   []string{"Authentication failed."},
			NewState: &Patch{ClearPasswordPrompt: true},
		}
	}

	switch pp.Command {
	case "root":
		res := e.promoteToRoot()
		res.NewState.ClearPasswordPrompt = true
		return res
	default:
		// The prompt mechanism is general; only root wires into it today.
		slog.Warn("password prompt resolved for unknown command", "command", pp.Command)
		return Result{
			Output:   []string{"Authenticated."},
			NewState: &Patch{ClearPasswordPrompt: true},
		}
	}
}
