package cli

import (
	"context"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/profiledir/internal/ir"
)

// commandContext returns the command's context, or Background outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// parseFields turns repeated k=v flags into a field map.
func parseFields(pairs []string) (map[string]string, error) {
	fields := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --field %q: want key=value", pair)
		}
		if _, dup := fields[key]; dup {
			return nil, fmt.Errorf("duplicate --field %q", key)
		}
		fields[key] = value
	}
	return fields, nil
}

// formatFields renders fields as sorted k=v pairs.
func formatFields(fields map[string]string) string {
	keys := slices.Sorted(maps.Keys(fields))
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%q", k, fields[k])
	}
	return strings.Join(parts, " ")
}

// writeRecord prints one record as a text line.
func writeRecord(w io.Writer, r ir.ProfileRecord) {
	if len(r.Profile.Fields) == 0 {
		fmt.Fprintf(w, "  %s  %s\n", r.Profile.Username, r.Identity)
		return
	}
	fmt.Fprintf(w, "  %s  %s  %s\n", r.Profile.Username, r.Identity, formatFields(r.Profile.Fields))
}

// outputRecords prints a record list in the configured format.
func outputRecords(formatter *OutputFormatter, records []ir.ProfileRecord) error {
	if formatter.Format == "json" {
		return formatter.Success(records)
	}

	if len(records) == 0 {
		fmt.Fprintln(formatter.Writer, "No profiles found")
		return nil
	}
	fmt.Fprintf(formatter.Writer, "%d profile(s):\n", len(records))
	for _, r := range records {
		writeRecord(formatter.Writer, r)
	}
	return nil
}
