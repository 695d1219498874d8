package cli

// RunOptions contains all the configuration for the Run command.
type RunOptions struct {
	FlowPath   string
	Flow       string
	SessionID  string
	Fresh      bool
	Watch      bool
	Debug      bool
	BackendURL string
	RedisURL   string
	StorePath  string
}

// Execute handles the 'run' command logic, dispatching to Session or Watch mode.
func Execute(opts RunOptions) error {
	if opts.Watch {
		return RunWatch(opts)
	}

	if opts.Fresh && opts.SessionID != "" {
		ResetSession(opts, opts.SessionID)
	}

	return RunSession(opts)
}
