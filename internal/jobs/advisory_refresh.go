// Package jobs holds the background loops started alongside the HTTP
// server.
package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"

	"smartagri/portal/internal/advisory"
	"smartagri/portal/internal/config"
	"smartagri/portal/internal/weather"
)

// WeatherSource is the lookup the refresh loop performs each tick.
type WeatherSource interface {
	CurrentByQuery(ctx context.Context, location string) (weather.Reading, error)
}

// StartAdvisoryRefreshJob keeps the default location's weather warm in the
// cache so the dashboard's first paint never waits on the upstream API,
// and logs when the advisory escalates beyond normal.
func StartAdvisoryRefreshJob(ctx context.Context, cfg config.Config, source WeatherSource, logger *zap.Logger) {
	if !cfg.AdvisoryRefreshEnabled {
		return
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	interval := cfg.AdvisoryRefreshInterval
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	timeout := cfg.AdvisoryRefreshTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				tickCtx, cancel := context.WithTimeout(ctx, timeout)
				reading, err := source.CurrentByQuery(tickCtx, cfg.DefaultLocation)
				cancel()
				if err != nil {
					logger.Warn("advisory refresh failed",
						zap.String("location", cfg.DefaultLocation),
						zap.Error(err),
					)
					continue
				}
				result := advisory.Evaluate(advisory.Reading{
					TemperatureC: reading.TemperatureC,
					Condition:    reading.Condition,
					WindSpeedMS:  reading.WindSpeedMS,
				})
				if result.Category != advisory.CategoryNormal {
					logger.Info("advisory active",
						zap.String("location", cfg.DefaultLocation),
						zap.String("title", result.Title),
					)
				}
			}
		}
	}()
}
