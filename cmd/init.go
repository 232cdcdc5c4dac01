package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/agdev-research/trials-cli/internal/cache"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the run-history schema and cache directory",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "init: migrate store")
		}

		if !cfg.Cache.Disabled {
			if _, err := cache.NewFS(cfg.Cache.Dir); err != nil {
				return eris.Wrap(err, "init: cache dir")
			}
		}

		fmt.Printf("initialized: store driver %s, cache dir %s\n", cfg.Store.Driver, cfg.Cache.Dir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
