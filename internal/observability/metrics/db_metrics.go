package metrics

import (
	"database/sql"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"pinmap/internal/platform/logger"
)

func registerDBMetrics(db *sql.DB, table string, log *logger.Logger) {
	if table == "" {
		table = "pinmap_sessions"
	}
	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "stored_sessions",
			Help: "Adapter sessions stored in the database",
		},
		func() float64 {
			return queryCount(db, log, fmt.Sprintf("SELECT COUNT(*) FROM %s", table))
		},
	))
}

func queryCount(db *sql.DB, log *logger.Logger, query string) float64 {
	if db == nil {
		return 0
	}
	var count int64
	if err := db.QueryRow(query).Scan(&count); err != nil {
		if log != nil {
			log.Warn("metrics query failed", "error", err)
		}
		return 0
	}
	if count < 0 {
		return 0
	}
	return float64(count)
}
