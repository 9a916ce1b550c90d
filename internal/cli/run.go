package cli

import "context"

// Run is a high-level CLI entrypoint suitable for black-box tests.
// It accepts the argument slice (excluding argv[0]) and returns the semantic
// exit code plus any error.
func Run(ctx context.Context, args []string, env Env) (CLIResult, error) {
	var res CLIResult
	root := NewRootCommand(env, &res)
	if args == nil {
		// cobra falls back to os.Args for a nil slice.
		args = []string{}
	}
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err != nil && res.ExitCode == ExitSuccess {
		res.ExitCode = ExitCode(err)
	}
	return res, err
}
