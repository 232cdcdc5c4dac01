package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/agdev-research/trials-cli/internal/cache"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect the fitted-model cache",
}

var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "List cached fitted models",
	RunE: func(cmd *cobra.Command, _ []string) error {
		c, err := cache.NewFS(cfg.Cache.Dir)
		if err != nil {
			return eris.Wrap(err, "cache status")
		}
		keys, err := c.Entries()
		if err != nil {
			return eris.Wrap(err, "cache status")
		}
		if len(keys) == 0 {
			fmt.Fprintln(os.Stderr, "Cache is empty.")
			return nil
		}
		formatCacheList(os.Stdout, keys)
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached fitted model",
	RunE: func(cmd *cobra.Command, _ []string) error {
		c, err := cache.NewFS(cfg.Cache.Dir)
		if err != nil {
			return eris.Wrap(err, "cache clear")
		}
		if err := c.Clear(); err != nil {
			return eris.Wrap(err, "cache clear")
		}
		fmt.Println("cache cleared")
		return nil
	},
}

func formatCacheList(w io.Writer, keys []cache.Key) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "OUTCOME\tVARIANT\tPOOLING\tCHAINS\tITERS\tCOVARIATES")
	for _, key := range keys {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\n",
			key.Outcome, key.Variant, key.Pooling, key.Chains, key.Iterations, len(key.Covariates))
	}
	_ = tw.Flush()
}

func init() {
	cacheCmd.AddCommand(cacheStatusCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}
