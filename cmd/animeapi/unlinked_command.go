package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"animeapi/internal/config"
	"animeapi/internal/link"
	"animeapi/internal/overrides"
	"animeapi/internal/services"
	"animeapi/internal/store"
)

func newUnlinkedCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "unlinked [platform]",
		Short: "List entries the last run could not link",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var platform string
			if len(args) == 1 {
				platform = strings.ToLower(strings.TrimSpace(args[0]))
				if !slices.Contains(overrides.Platforms, platform) {
					return services.Wrap(services.ErrValidation, "unlinked", "list entries",
						fmt.Sprintf("unknown platform %q (expected one of %s)", platform, strings.Join(overrides.Platforms, ", ")), nil)
				}
			}
			return ctx.withStore(func(_ *config.Config, st *store.Store) error {
				entries, err := st.ListUnlinked(cmd.Context(), platform)
				if err != nil {
					return services.Wrap(services.ErrPersistence, "unlinked", "list entries", "", err)
				}
				if entries == nil {
					entries = []link.Unlinked{}
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, entries)
				}
				out := cmd.OutOrStdout()
				if len(entries) == 0 {
					fmt.Fprintln(out, "No unlinked entries")
					return nil
				}
				rows := make([][]string, len(entries))
				for i, entry := range entries {
					rows[i] = []string{entry.Platform, entry.Key, entry.Title, entry.Reason}
				}
				fmt.Fprintln(out, renderTable([]string{"Platform", "Key", "Title", "Reason"}, rows, nil))
				return nil
			})
		},
	}
}
