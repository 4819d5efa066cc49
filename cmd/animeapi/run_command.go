package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"animeapi/internal/config"
	"animeapi/internal/kvsync"
	"animeapi/internal/pipeline"
	"animeapi/internal/services"
	"animeapi/internal/store"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var skipKV bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Reconcile every dataset into the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.logger(cmd)
			if err != nil {
				return err
			}
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				var opts []pipeline.Option
				if cfg.KV.Enabled && !skipKV {
					client, err := openKV(cfg)
					if err != nil {
						return err
					}
					defer client.Close()
					opts = append(opts, pipeline.WithKV(client))
				}

				summary, err := pipeline.New(cfg, st, logger, opts...).Run(cmd.Context())
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, summary)
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderRunSummary(summary))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&skipKV, "no-kv", false, "Skip the KV sync even when enabled in config")
	return cmd
}

func openKV(cfg *config.Config) (*kvsync.RedisClient, error) {
	timeout := time.Duration(cfg.KV.TimeoutSeconds) * time.Second
	client, err := kvsync.NewRedisClient(cfg.KV.RedisURL, timeout)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, pipeline.StageKVSync, "connect to kv store", "", err)
	}
	return client, nil
}

func renderRunSummary(summary pipeline.Summary) string {
	rows := [][]string{
		{"Run", summary.RunID},
		{"Records", strconv.Itoa(summary.Records)},
		{"Inserts", strconv.Itoa(summary.Inserts)},
		{"Updates", strconv.Itoa(summary.Updates)},
		{"Deletes", strconv.Itoa(summary.Deletes)},
	}
	for _, report := range summary.Links {
		rows = append(rows, []string{
			"Linked " + report.Platform,
			fmt.Sprintf("%d exact, %d fuzzy, %d unlinked", report.Exact, report.Fuzzy, summary.Unlinked[report.Platform]),
		})
	}
	if summary.KV != nil {
		rows = append(rows, []string{"KV operations", strconv.Itoa(summary.KV.Operations)})
	}
	rows = append(rows, []string{"Elapsed", summary.Elapsed.Round(time.Millisecond).String()})
	return renderTable([]string{"Item", "Value"}, rows, nil)
}
