package supervisor

import "github.com/nekocode/agent-team/internal/agentteam/apierr"

func stateErrorf(format string, args ...interface{}) error {
	return apierr.New(apierr.State, format, args...)
}
