package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/una/pkg/observability"
)

// logHooks reports check and cache events at debug level.
type logHooks struct {
	logger *log.Logger
}

func (h logHooks) OnCheckStart(pkg string) {
	h.logger.Debug("checking package", "package", pkg)
}

func (h logHooks) OnCheckComplete(pkg string, missingInternal, missingExternal int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("check failed", "package", pkg, "err", err)
		return
	}
	h.logger.Debug("check complete", "package", pkg,
		"missing_internal", missingInternal, "missing_external", missingExternal,
		"took", d.Round(time.Millisecond))
}

func (h logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache write", "type", keyType, "bytes", size)
}

// registerHooks routes observability events to the CLI logger.
func (c *CLI) registerHooks() {
	h := logHooks{logger: c.Logger}
	observability.SetCheckHooks(h)
	observability.SetCacheHooks(h)
}
