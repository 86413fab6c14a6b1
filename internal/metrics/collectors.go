package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"kbmetrics/pkg/logger"
)

// CollectionCounter reports approximate document counts per metrics collection
type CollectionCounter interface {
	CollectionSizes(ctx context.Context) (map[string]int64, error)
}

// CustomCollector exports metrics database sizes at scrape time
type CustomCollector struct {
	log     *logger.Logger
	counter CollectionCounter
	timeout time.Duration

	collectionDocs *prometheus.Desc
	scrapeErrors   *prometheus.Desc
}

// NewCustomCollector creates a new custom metrics collector
func NewCustomCollector(log *logger.Logger, counter CollectionCounter) *CustomCollector {
	return &CustomCollector{
		log:     log,
		counter: counter,
		timeout: 5 * time.Second,

		collectionDocs: prometheus.NewDesc(
			"kbmetrics_collection_documents",
			"Estimated number of documents per metrics collection",
			[]string{"collection"}, nil,
		),
		scrapeErrors: prometheus.NewDesc(
			"kbmetrics_collector_scrape_error",
			"Whether the last collection size scrape failed (0=ok, 1=failed)",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector
func (c *CustomCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.collectionDocs
	ch <- c.scrapeErrors
}

// Collect implements prometheus.Collector
func (c *CustomCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	sizes, err := c.counter.CollectionSizes(ctx)
	if err != nil {
		c.log.Error("Failed to collect collection sizes", "error", err)
		ch <- prometheus.MustNewConstMetric(c.scrapeErrors, prometheus.GaugeValue, 1)
		return
	}

	ch <- prometheus.MustNewConstMetric(c.scrapeErrors, prometheus.GaugeValue, 0)
	for name, n := range sizes {
		ch <- prometheus.MustNewConstMetric(
			c.collectionDocs,
			prometheus.GaugeValue,
			float64(n),
			name,
		)
	}
}

// RegisterCustomCollector registers the custom collector
func RegisterCustomCollector(collector *CustomCollector) {
	prometheus.MustRegister(collector)
}
