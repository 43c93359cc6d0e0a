package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/profiledir/internal/ir"
	"github.com/roach88/profiledir/internal/shard"
)

// StatusResult summarises what the ledger holds.
type StatusResult struct {
	Version  string `json:"version"`
	Database string `json:"database"`
	Records  int    `json:"records"`
	Links    int    `json:"links"`
	Shards   int    `json:"shards"`
}

// statser is implemented by both ledgers.
type statser interface {
	Stats(ctx context.Context) (ir.LedgerStats, error)
}

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "status",
		Short:         "Show ledger record, link and shard counts",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(rootOpts, cmd)
		},
	}

	return cmd
}

func runStatus(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(cmd, opts)

	sess, err := openSession(cmd, opts)
	if err != nil {
		return formatter.Fail(err)
	}
	defer sess.Close()

	ctx := commandContext(cmd)
	result := StatusResult{Version: ir.DirectoryVersion, Database: sess.cfg.Database}

	if st, ok := sess.ledger.(statser); ok {
		stats, err := st.Stats(ctx)
		if err != nil {
			return formatter.Fail(err)
		}
		result.Records = stats.Records
		result.Links = stats.Links
	}

	shards, err := shard.NewTree(sess.ledger).Shards(ctx)
	if err != nil {
		return formatter.Fail(err)
	}
	result.Shards = len(shards)

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "Version:  %s\n", result.Version)
	fmt.Fprintf(formatter.Writer, "Database: %s\n", result.Database)
	fmt.Fprintf(formatter.Writer, "Records:  %d\n", result.Records)
	fmt.Fprintf(formatter.Writer, "Links:    %d\n", result.Links)
	fmt.Fprintf(formatter.Writer, "Shards:   %d\n", result.Shards)
	return nil
}
