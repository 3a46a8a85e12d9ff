package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ImportRowsTotal counts committed rows by outcome
	// (created/updated/duplicate/error).
	ImportRowsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "assetdeck_import_rows_total",
		Help: "Import rows processed during commit, by outcome.",
	}, []string{"outcome"})

	// ImportJobsTotal counts jobs reaching a terminal state.
	ImportJobsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "assetdeck_import_jobs_total",
		Help: "Import jobs finalized, by terminal status.",
	}, []string{"status"})

	// ImportPreviewsTotal counts generated previews.
	ImportPreviewsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "assetdeck_import_previews_total",
		Help: "Import previews generated.",
	})
)
