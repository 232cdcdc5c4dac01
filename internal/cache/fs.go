package cache

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/agdev-research/trials-cli/internal/model"
)

const (
	metaFile   = "meta.yaml"
	resultFile = "result.json"
)

// FSCache stores one directory per key digest, holding the result JSON
// and a yaml sidecar with the full key. Get re-verifies every sidecar
// field against the requested key, so a digest collision or a stale
// hand-copied directory can never be served.
type FSCache struct {
	dir string
}

// NewFS creates the cache directory if needed.
func NewFS(dir string) (*FSCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, eris.Wrap(err, "cache: create dir")
	}
	return &FSCache{dir: dir}, nil
}

func (c *FSCache) Get(_ context.Context, key Key) (*model.FitResult, bool, error) {
	entry := filepath.Join(c.dir, key.Digest())

	rawMeta, err := os.ReadFile(filepath.Join(entry, metaFile))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, eris.Wrap(err, "cache: read meta")
	}

	var stored Key
	if err := yaml.Unmarshal(rawMeta, &stored); err != nil {
		zap.L().Warn("cache: unreadable meta, treating as miss",
			zap.String("entry", entry), zap.Error(err))
		return nil, false, nil
	}
	if !stored.Equal(key) {
		zap.L().Warn("cache: key mismatch, treating as miss",
			zap.String("entry", entry),
			zap.String("outcome", key.Outcome),
		)
		return nil, false, nil
	}

	rawResult, err := os.ReadFile(filepath.Join(entry, resultFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, eris.Wrap(err, "cache: read result")
	}
	var result model.FitResult
	if err := json.Unmarshal(rawResult, &result); err != nil {
		zap.L().Warn("cache: corrupt result, treating as miss",
			zap.String("entry", entry), zap.Error(err))
		return nil, false, nil
	}
	return &result, true, nil
}

func (c *FSCache) Put(_ context.Context, key Key, result *model.FitResult) error {
	entry := filepath.Join(c.dir, key.Digest())
	if err := os.MkdirAll(entry, 0o755); err != nil {
		return eris.Wrap(err, "cache: create entry")
	}

	rawMeta, err := yaml.Marshal(key)
	if err != nil {
		return eris.Wrap(err, "cache: marshal meta")
	}
	rawResult, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return eris.Wrap(err, "cache: marshal result")
	}

	// Result first, meta last: an entry without meta is never served.
	if err := os.WriteFile(filepath.Join(entry, resultFile), rawResult, 0o644); err != nil {
		return eris.Wrap(err, "cache: write result")
	}
	if err := os.WriteFile(filepath.Join(entry, metaFile), rawMeta, 0o644); err != nil {
		return eris.Wrap(err, "cache: write meta")
	}
	return nil
}

// Entries lists the keys of all readable cache entries.
func (c *FSCache) Entries() ([]Key, error) {
	dirs, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, eris.Wrap(err, "cache: list dir")
	}
	var keys []Key
	for _, d := range dirs {
		if !d.IsDir() {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(c.dir, d.Name(), metaFile))
		if err != nil {
			continue
		}
		var key Key
		if err := yaml.Unmarshal(raw, &key); err != nil {
			continue
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// Clear removes every cache entry.
func (c *FSCache) Clear() error {
	dirs, err := os.ReadDir(c.dir)
	if err != nil {
		return eris.Wrap(err, "cache: list dir")
	}
	for _, d := range dirs {
		if err := os.RemoveAll(filepath.Join(c.dir, d.Name())); err != nil {
			return eris.Wrap(err, "cache: remove entry")
		}
	}
	return nil
}
