package domain

import (
	"context"
	"time"
)

// EndpointHit is one recorded page view.
type EndpointHit struct {
	App       string
	URI       string
	IP        string
	Timestamp time.Time
}

// ViewStats is the aggregated hit count for one URI.
type ViewStats struct {
	App  string `json:"app"`
	URI  string `json:"uri"`
	Hits int64  `json:"hits"`
}

// StatsQuery selects the hits aggregated by GetStats.
type StatsQuery struct {
	Start  time.Time
	End    time.Time
	URIs   []string
	Unique bool
}

// StatsClient talks to the external view-count service. Failures are never fatal to callers.
type StatsClient interface {
	SaveHit(ctx context.Context, hit EndpointHit) error
	GetStats(ctx context.Context, q StatsQuery) ([]ViewStats, error)
}
