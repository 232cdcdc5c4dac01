package main

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/agdev-research/trials-cli/internal/cache"
	"github.com/agdev-research/trials-cli/internal/dataset"
	"github.com/agdev-research/trials-cli/internal/engine"
	"github.com/agdev-research/trials-cli/internal/store"
)

// initStore opens the configured run-history backend.
func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		return store.NewSQLite(cfg.Store.DatabaseURL)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	}
	return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
}

// initCache opens the fitted-model cache. A disabled cache is a
// pass-through: every fit reaches the sampler.
func initCache() (cache.Cache, error) {
	if cfg.Cache.Disabled {
		return cache.NopCache{}, nil
	}
	return cache.NewFS(cfg.Cache.Dir)
}

// initEngine picks the sampler adapter.
func initEngine(offline bool) engine.Engine {
	if offline {
		return engine.StubEngine{}
	}
	return engine.NewExternal(cfg.Engine)
}

// loadTable reads the raw pooled trial table, dispatching on extension.
func loadTable(path string) (*dataset.Table, error) {
	if path == "" {
		path = cfg.Data.Input
	}
	if path == "" {
		return nil, eris.New("no input file: set --input or data.input")
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return dataset.ReadXLSX(path, dataset.XLSXOptions{
			SheetName: cfg.Data.Sheet,
			NATokens:  cfg.Data.NATokens,
		})
	default:
		var delim rune
		if cfg.Data.Delimiter != "" {
			delim = rune(cfg.Data.Delimiter[0])
		}
		return dataset.ReadCSV(path, dataset.CSVOptions{
			Delimiter: delim,
			Encoding:  cfg.Data.Encoding,
			NATokens:  cfg.Data.NATokens,
		})
	}
}

// resolveOutcomes returns the requested outcome or everything configured.
func resolveOutcomes(flag string) []string {
	if flag != "" {
		return []string{flag}
	}
	return cfg.Data.Outcomes
}
