package cli

import (
	"github.com/spf13/cobra"
)

// NewSearchCommand creates the search command.
func NewSearchCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <prefix>",
		Short: "List profiles in the shard of a username prefix",
		Long: `List profiles whose username shares the first three characters of prefix.

Search is shard-granular: characters after the third do not narrow the result.

Example:
  profiledir search ali`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runSearch(opts *RootOptions, prefix string, cmd *cobra.Command) error {
	formatter := newFormatter(cmd, opts)

	sess, err := openSession(cmd, opts)
	if err != nil {
		return formatter.Fail(err)
	}
	defer sess.Close()

	svc, err := sess.directory("")
	if err != nil {
		return formatter.Fail(err)
	}

	records, err := svc.SearchProfiles(commandContext(cmd), prefix)
	if err != nil {
		return formatter.Fail(err)
	}
	formatter.VerboseLog("Found %d profile(s) for prefix %q", len(records), prefix)
	return outputRecords(formatter, records)
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "list",
		Short:         "List every profile in the directory",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(rootOpts, cmd)
		},
	}

	return cmd
}

func runList(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(cmd, opts)

	sess, err := openSession(cmd, opts)
	if err != nil {
		return formatter.Fail(err)
	}
	defer sess.Close()

	svc, err := sess.directory("")
	if err != nil {
		return formatter.Fail(err)
	}

	records, err := svc.ListAllProfiles(commandContext(cmd))
	if err != nil {
		return formatter.Fail(err)
	}
	return outputRecords(formatter, records)
}
