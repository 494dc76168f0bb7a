package cli

import (
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags "-X .../internal/cli.Version=...".
var Version = "dev"

type versionResult struct {
	Version   string `json:"version"`
	GoVersion string `json:"goVersion"`
}

func (r versionResult) renderText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "zdb %s (%s)\n", r.Version, r.GoVersion)
	return err
}

// NewVersionCommand creates the version command.
func NewVersionCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "version",
		Short:         "Print the zdb version",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rootOpts.rejectDot(); err != nil {
				return err
			}
			return rootOpts.formatter(cmd).Success(versionResult{
				Version:   Version,
				GoVersion: runtime.Version(),
			})
		},
	}
}
