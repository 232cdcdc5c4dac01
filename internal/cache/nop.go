package cache

import (
	"context"

	"github.com/agdev-research/trials-cli/internal/model"
)

// NopCache never hits and never stores. It backs --no-cache runs, where
// every fit must reach the sampler even within one process.
type NopCache struct{}

func (NopCache) Get(context.Context, Key) (*model.FitResult, bool, error) { return nil, false, nil }

func (NopCache) Put(context.Context, Key, *model.FitResult) error { return nil }
