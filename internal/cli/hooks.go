package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/depinfo/pkg/observability"
)

// logHooks forwards observability events to the CLI logger. Report and cache
// events are debug-level; HTTP responses are logged at info.
type logHooks struct {
	logger *log.Logger
}

func installHooks(l *log.Logger) {
	h := logHooks{logger: l}
	observability.SetReportHooks(h)
	observability.SetCacheHooks(h)
	observability.SetHTTPHooks(h)
}

func (h logHooks) OnIndexBuilt(_ context.Context, packages, resolved int, d time.Duration) {
	h.logger.Debug("package index built", "packages", packages, "resolved", resolved, "took", d.Round(time.Microsecond))
}

func (h logHooks) OnReportWritten(_ context.Context, mode string, bytes int, d time.Duration) {
	h.logger.Debug("report written", "mode", mode, "bytes", bytes, "took", d.Round(time.Microsecond))
}

func (h logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h logHooks) OnRequest(_ context.Context, requestID, method, path string) {
	h.logger.Debug("request", "id", requestID, "method", method, "path", path)
}

func (h logHooks) OnResponse(_ context.Context, requestID, method, path string, status int, d time.Duration) {
	h.logger.Info("response", "id", requestID, "method", method, "path", path, "status", status, "took", d.Round(time.Millisecond))
}

func (h logHooks) OnError(_ context.Context, requestID, method, path string, err error) {
	h.logger.Error("request failed", "id", requestID, "method", method, "path", path, "err", err)
}
