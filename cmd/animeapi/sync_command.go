package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"animeapi/internal/config"
	"animeapi/internal/kvsync"
	"animeapi/internal/pipeline"
	"animeapi/internal/services"
	"animeapi/internal/store"
)

func newSyncCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Push pending changes to the KV store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.logger(cmd)
			if err != nil {
				return err
			}
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				if cfg.KV.RedisURL == "" {
					return services.Wrap(services.ErrConfiguration, pipeline.StageKVSync, "sync changes", "kv.redis_url is not set", nil)
				}
				client, err := openKV(cfg)
				if err != nil {
					return err
				}
				defer client.Close()
				if err := client.Ping(cmd.Context()); err != nil {
					return services.Wrap(services.ErrUpstream, pipeline.StageKVSync, "ping kv store", client.Addr(), err)
				}

				syncer := kvsync.Syncer{
					Store:     st,
					Client:    client,
					BatchSize: cfg.KV.BatchSize,
					KeyPrefix: cfg.KV.KeyPrefix,
					Logger:    logger,
				}
				result, err := syncer.Run(cmd.Context())
				if err != nil {
					return services.Wrap(services.ErrUpstream, pipeline.StageKVSync, "sync changes", "", err)
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, result)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Synced %d changes as %d operations in %d batches\n",
					result.Changes, result.Operations, result.Batches)
				return nil
			})
		},
	}
}
