package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus counters for the scraper.
type Metrics struct {
	KeywordsProcessed prometheus.Counter
	ListingsExtracted prometheus.Counter
	RowsAccepted      prometheus.Counter
	SoftFailures      *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		KeywordsProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "scraper_keywords_processed_total",
			Help: "The total number of keywords processed",
		}),
		ListingsExtracted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "scraper_listings_extracted_total",
			Help: "The total number of listings extracted from result frames",
		}),
		RowsAccepted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "scraper_rows_accepted_total",
			Help: "The total number of rows accepted by the result pipeline",
		}),
		SoftFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "scraper_soft_failures_total",
			Help: "The total number of per-keyword soft failures",
		}, []string{"stage"}), // e.g. 'frame_resolution', 'crawl'
	}
}
