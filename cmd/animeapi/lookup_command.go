package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"animeapi/internal/anime"
	"animeapi/internal/config"
	"animeapi/internal/services"
	"animeapi/internal/store"
)

func newLookupCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <platform> <id>",
		Short: "Show the record a platform identifier resolves to",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			platform, ok := anime.LookupPlatform(args[0])
			if !ok {
				return services.Wrap(services.ErrValidation, "lookup", "resolve platform",
					fmt.Sprintf("unknown platform %q", args[0]), nil)
			}
			return ctx.withStore(func(_ *config.Config, st *store.Store) error {
				id, record, err := st.FindByPlatform(cmd.Context(), platform, args[1])
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, record)
				}
				rows := [][]string{{"id", strconv.FormatInt(id, 10)}, {"title", record.Title}}
				for _, field := range anime.Fields {
					if value, ok := field.String(record); ok {
						rows = append(rows, []string{field.Name, value})
					}
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Field", "Value"}, rows, nil))
				return nil
			})
		},
	}
}
