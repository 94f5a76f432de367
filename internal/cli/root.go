package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/stackpin/pkg/buildinfo"
)

// RootCommand creates the root cobra command with all subcommands registered.
// The logger is attached to each command's context before it runs.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "stackpin resolves the versions a deployment should pin",
		Long: `stackpin resolves the latest release of a Python package on PyPI, the latest
GitHub release of its build tool, and the interpreter version pinned by the
package release, and reports them as provisioning facts.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.resolveCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}
