package utils

import "time"

type Metric struct {
	FeedCompute        chan float64
	DatabaseRead       chan float64
	DatabaseWrite      chan float64
	DiscordSendMessage chan float64
}

func NewMetric() *Metric {
	return &Metric{
		FeedCompute:        make(chan float64, 16),
		DatabaseRead:       make(chan float64, 16),
		DatabaseWrite:      make(chan float64, 16),
		DiscordSendMessage: make(chan float64, 16),
	}
}

// Report the time elapsed since start in microseconds. Drops the sample
// when no collector keeps up, so request handlers never block on metrics.
func ReportSince(ch chan<- float64, start time.Time) {
	select {
	case ch <- float64(time.Since(start).Microseconds()):
	default:
	}
}
