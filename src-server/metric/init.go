package metric

import (
	"log/slog"
	"time"

	"bulletin/src-server/utils"

	"github.com/prometheus/client_golang/prometheus"
)

// Register a gauge on the app registry, returns false when that fails
func register(as *utils.AppState, gauge prometheus.Gauge, name string) bool {
	if err := as.MetricRegistry.Register(gauge); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
			slog.Error("can't register metric", "metric", name, "error", err)
			return false
		}
	}
	slog.Debug("metric registered", "metric", name)
	gauge.Set(0)
	return true
}

func unregister(as *utils.AppState, gauge prometheus.Gauge, name string) {
	switch as.MetricRegistry.Unregister(gauge) {
	case true:
		slog.Debug("metric unregistered", "metric", name)
	case false:
		slog.Warn("metric not registered", "metric", name)
	}
}

// Gauge fed by a channel of samples; reset to 0 when no sample arrives
// within clearInterval so stale latencies don't linger on dashboards
func pushed(as *utils.AppState, name, help string, samples <-chan float64, clearInterval time.Duration) {
	gauge := prometheus.NewGauge(prometheus.GaugeOpts{Name: name, Help: help})
	if !register(as, gauge, name) {
		return
	}
	gracefulShutdownCh := as.CreateGracefulShutdownChan()
	go func() {
		clearTicker := time.NewTicker(clearInterval)
		defer clearTicker.Stop()
		for {
			select {
			case <-*gracefulShutdownCh:
				unregister(as, gauge, name)
				return
			case sample := <-samples:
				gauge.Set(sample)
				clearTicker.Reset(clearInterval)
			case <-clearTicker.C:
				gauge.Set(0)
			}
		}
	}()
}

// Gauge sampled by calling probe every interval
func polled(as *utils.AppState, name, help string, interval time.Duration, probe func() (float64, error)) {
	gauge := prometheus.NewGauge(prometheus.GaugeOpts{Name: name, Help: help})
	if !register(as, gauge, name) {
		return
	}
	gracefulShutdownCh := as.CreateGracefulShutdownChan()
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-*gracefulShutdownCh:
				unregister(as, gauge, name)
				return
			case <-ticker.C:
				value, err := probe()
				if err != nil {
					slog.Error("can't probe metric", "metric", name, "error", err)
					continue
				}
				gauge.Set(value)
			}
		}
	}()
}

func Init(as *utils.AppState) {
	tickerInterval := as.Config.GetMetricCollectionInterval()
	clearTickerInterval := tickerInterval * 2

	pushed(as, "bulletin_feed_compute_microsec",
		"The time spent filtering and sorting a feed in microseconds",
		as.MetricChans.FeedCompute, clearTickerInterval)
	pushed(as, "bulletin_database_read_microsec",
		"The latency of a database read in microseconds",
		as.MetricChans.DatabaseRead, clearTickerInterval)
	pushed(as, "bulletin_database_write_microsec",
		"The latency of a database write in microseconds",
		as.MetricChans.DatabaseWrite, clearTickerInterval)
	pushed(as, "bulletin_discord_send_message_microsec",
		"The latency of a discord message send in microseconds",
		as.MetricChans.DiscordSendMessage, clearTickerInterval)

	polled(as, "bulletin_database_empty_read_microsec",
		"The latency of an empty database read in microseconds",
		tickerInterval, func() (float64, error) {
			latency, err := databaseEmptyRead(as)
			return float64(latency.Microseconds()), err
		})
	polled(as, "bulletin_posters",
		"The number of posters stored",
		tickerInterval, func() (float64, error) {
			count, err := posterCount(as)
			return float64(count), err
		})

	if as.DgSession != nil {
		polled(as, "bulletin_discord_heartbeat_latency_microsec",
			"The latency of a discord heartbeat in microseconds",
			tickerInterval, func() (float64, error) {
				return float64(as.DgSession.HeartbeatLatency().Microseconds()), nil
			})
	}
}
