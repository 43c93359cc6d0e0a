package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/profiledir/internal/identity"
	"github.com/roach88/profiledir/internal/ir"
)

// IdentityResult is the output of the identity commands.
type IdentityResult struct {
	Identity ir.Identity `json:"identity"`
	KeyFile  string      `json:"key_file"`
}

// NewIdentityCommand creates the identity command and its subcommands.
func NewIdentityCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "identity",
		Short: "Manage the local identity key",
	}

	cmd.AddCommand(&cobra.Command{
		Use:           "new",
		Short:         "Generate a new identity key",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIdentityNew(rootOpts, cmd)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:           "show",
		Short:         "Print the local identity",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIdentityShow(rootOpts, cmd)
		},
	})

	return cmd
}

func runIdentityNew(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(cmd, opts)

	cfg, err := loadConfig(opts)
	if err != nil {
		return formatter.Fail(err)
	}
	logger := setupLogging(cmd, opts, cfg)

	key, err := identity.Generate()
	if err != nil {
		return formatter.Fail(commandError(ErrCodeIdentity, "failed to generate key", err))
	}
	if err := identity.Save(cfg.KeyFile, key); err != nil {
		return formatter.Fail(commandError(ErrCodeIdentity, "failed to save key", err))
	}
	logger.Info("identity created", "identity", key.Identity(), "path", cfg.KeyFile)

	return outputIdentity(formatter, IdentityResult{Identity: key.Identity(), KeyFile: cfg.KeyFile})
}

func runIdentityShow(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(cmd, opts)

	cfg, err := loadConfig(opts)
	if err != nil {
		return formatter.Fail(err)
	}
	setupLogging(cmd, opts, cfg)

	key, err := identity.Load(cfg.KeyFile)
	if err != nil {
		return formatter.Fail(commandError(ErrCodeIdentity, "failed to load identity key", err))
	}

	return outputIdentity(formatter, IdentityResult{Identity: key.Identity(), KeyFile: cfg.KeyFile})
}

func outputIdentity(formatter *OutputFormatter, result IdentityResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintln(formatter.Writer, result.Identity)
	formatter.VerboseLog("Key file: %s", result.KeyFile)
	return nil
}
