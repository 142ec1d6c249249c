package reports

import (
	"context"
	"time"

	"bitbucket.org/rodmar/rodmar_backend/config"
	"bitbucket.org/rodmar/rodmar_backend/utils"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
)

// every cached report key is recorded here so a mutation can drop them all
const reportCacheKeys = "report:keys"

const reportSlow = 500 * time.Millisecond

var tracer = otel.Tracer("rodmar-backend/reports")

func reportCacheEnabled() bool {
	return config.ReportCacheEnabled() && config.GetRedisDB() != nil
}

func logSlowReport(ctx context.Context, name string, started time.Time, extra map[string]any) {
	d := time.Since(started)
	if d < reportSlow {
		return
	}
	cid, _ := utils.GetCorrelationIdFromContext(ctx)
	config.GetLogger().WithFields(logrus.Fields{
		"report":         name,
		"ms":             d.Milliseconds(),
		"correlation_id": cid,
		"extra":          extra,
	}).Warn("slow report")
}

func cacheGet[T any](key string, dest *T) (bool, error) {
	return config.GetRedisObject(key, dest)
}

func cacheSet(key string, obj any, ttl time.Duration) error {
	if err := config.SetRedisObject(key, obj, ttl); err != nil {
		return err
	}
	return config.AddRedisSet(reportCacheKeys, key)
}

// cached returns the value under key, building and storing it on a miss.
// Redis errors degrade to an uncached build.
func cached[T any](key string, build func() (T, error)) (T, error) {
	if !reportCacheEnabled() {
		return build()
	}
	var hit T
	if ok, err := cacheGet(key, &hit); err == nil && ok {
		return hit, nil
	} else if err != nil {
		config.LogError(config.GetLogger(), "Reports", "cached", "redis read failed", key, err)
	}
	value, err := build()
	if err != nil {
		return value, err
	}
	if err := cacheSet(key, value, config.ReportCacheTTL()); err != nil {
		config.LogError(config.GetLogger(), "Reports", "cached", "redis write failed", key, err)
	}
	return value, nil
}

// InvalidateReportCache drops every cached report. Called after any ledger mutation.
func InvalidateReportCache() error {
	keys, err := config.GetRedisSetMembers(reportCacheKeys)
	if err != nil {
		return err
	}
	return config.RemoveRedisKey(append(keys, reportCacheKeys)...)
}
