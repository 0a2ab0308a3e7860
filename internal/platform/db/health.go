package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// HealthStatus reports database reachability for the /health endpoint.
type HealthStatus struct {
	Database string        `json:"database"`
	Latency  time.Duration `json:"latency_ms"`
}

// CheckHealth pings the database with a short timeout and reports the result.
// It never returns an error; an unreachable database is reported as "down".
func CheckHealth(ctx context.Context, pool *pgxpool.Pool) HealthStatus {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	start := time.Now()
	if err := pool.Ping(ctx); err != nil {
		return HealthStatus{Database: "down", Latency: time.Since(start) / time.Millisecond}
	}
	return HealthStatus{Database: "up", Latency: time.Since(start) / time.Millisecond}
}
