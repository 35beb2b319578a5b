package dist

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/una/pkg/cache"
	"github.com/matzehuels/una/pkg/observability"
)

const cacheKeyType = "dist-index"

// Load returns the index of dirs, reading it from c when the directories'
// metadata listing is unchanged and scanning (then storing) otherwise.
// Cache failures are logged and fall back to a scan.
func Load(ctx context.Context, c cache.Cache, logger *log.Logger, dirs ...string) *Index {
	if c == nil {
		return Scan(dirs...)
	}
	key := cache.Key(cacheKeyType, fingerprint(dirs))

	data, hit, err := c.Get(ctx, key)
	if err != nil && logger != nil {
		logger.Warn("dist index cache read failed", "err", err)
	}
	hooks := observability.Cache()
	if hit {
		var idx Index
		if err := json.Unmarshal(data, &idx); err == nil {
			hooks.OnCacheHit(ctx, cacheKeyType)
			if logger != nil {
				logger.Debug("dist index cache hit", "dists", len(idx.Dists))
			}
			return &idx
		}
	}

	hooks.OnCacheMiss(ctx, cacheKeyType)

	idx := Scan(dirs...)
	if data, err := json.Marshal(idx); err == nil {
		if err := c.Set(ctx, key, data, cache.DistIndexTTL); err != nil {
			if logger != nil {
				logger.Warn("dist index cache write failed", "err", err)
			}
		} else {
			hooks.OnCacheSet(ctx, cacheKeyType, len(data))
		}
	}
	return idx
}

type dirState struct {
	Dir     string    `json:"dir"`
	ModTime time.Time `json:"mod_time"`
	Entries []string  `json:"entries"`
}

// fingerprint captures what Scan would read: installing or removing a
// distribution adds or removes a metadata directory.
func fingerprint(dirs []string) []dirState {
	out := make([]dirState, 0, len(dirs))
	for _, d := range dirs {
		s := dirState{Dir: d, Entries: metadataEntries(d)}
		if info, err := os.Stat(d); err == nil {
			s.ModTime = info.ModTime().UTC()
		}
		out = append(out, s)
	}
	return out
}
