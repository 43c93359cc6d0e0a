package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/profiledir/internal/ir"
)

// NewGetCommand creates the get command.
func NewGetCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get [identity]",
		Short: "Show the profile bound to an identity",
		Long: `Show the profile bound to an identity.

Without an argument, shows the profile of the local identity.

Example:
  profiledir get
  profiledir get QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runGet(opts *RootOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(cmd, opts)

	sess, err := openSession(cmd, opts)
	if err != nil {
		return formatter.Fail(err)
	}
	defer sess.Close()

	var id ir.Identity
	if len(args) == 1 {
		if !ir.ValidAddress(args[0]) {
			return formatter.Fail(commandError(ErrCodeUsage,
				fmt.Sprintf("invalid identity %q", args[0]), fmt.Errorf("not a base58 multihash")))
		}
		id = ir.Identity(args[0])
	} else {
		key, err := sess.key()
		if err != nil {
			return formatter.Fail(err)
		}
		id = key.Identity()
	}

	svc, err := sess.directory(id)
	if err != nil {
		return formatter.Fail(err)
	}

	record, err := svc.GetProfile(commandContext(cmd), id)
	if err != nil {
		return formatter.Fail(err)
	}

	if formatter.Format == "json" {
		return formatter.Success(record)
	}
	if record == nil {
		fmt.Fprintf(formatter.Writer, "No profile for %s\n", id)
		return nil
	}
	writeRecord(formatter.Writer, *record)
	return nil
}
