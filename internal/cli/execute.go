package cli

import (
	"context"
	"errors"
	"io"
)

// Execute runs the CLI with args and returns the process exit code.
//
// Errors are printed as a JSON envelope on stdout when the json format is
// in effect, from --format or output.format, and as text on stderr otherwise.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd, opts := newRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}

	code := GetExitCode(err)
	format := opts.errorFormat(cmd)
	f := &OutputFormatter{Format: format, Writer: stderr}
	if format == "json" {
		f.Writer = stdout
	}

	message := err.Error()
	var details interface{}
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Err != nil {
		message = exitErr.Message
		details = exitErr.Err.Error()
		f.Verbose = true
	}
	_ = f.Error(errorCode(code), message, details)
	return code
}
