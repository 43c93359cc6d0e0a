package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/profiledir/internal/ir"
)

// CreateOptions holds flags for the create command.
type CreateOptions struct {
	*RootOptions
	Fields []string
}

// NewCreateCommand creates the create command.
func NewCreateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CreateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "create <username>",
		Short: "Register a profile for the local identity",
		Long: `Register a profile under the local identity.

The username must be at least three characters and not yet registered.
Each identity may register one profile.

Example:
  profiledir create alice --field bio=hi --field site=https://alice.example`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.Fields, "field", "f", nil, "profile field as key=value (repeatable)")

	return cmd
}

func runCreate(opts *CreateOptions, username string, cmd *cobra.Command) error {
	formatter := newFormatter(cmd, opts.RootOptions)

	fields, err := parseFields(opts.Fields)
	if err != nil {
		return formatter.Fail(commandError(ErrCodeUsage, "invalid fields", err))
	}

	sess, err := openSession(cmd, opts.RootOptions)
	if err != nil {
		return formatter.Fail(err)
	}
	defer sess.Close()

	key, err := sess.key()
	if err != nil {
		return formatter.Fail(err)
	}
	svc, err := sess.directory(key.Identity())
	if err != nil {
		return formatter.Fail(err)
	}

	formatter.VerboseLog("Creating profile %q as %s", username, key.Identity())
	record, err := svc.CreateProfile(commandContext(cmd), ir.Profile{Username: username, Fields: fields})
	if err != nil {
		return formatter.Fail(err)
	}

	if formatter.Format == "json" {
		return formatter.Success(record)
	}
	fmt.Fprintf(formatter.Writer, "✓ Created profile %s for %s\n", record.Profile.Username, record.Identity)
	return nil
}
