package metrics

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"kbmetrics/pkg/logger"
)

type stubCounter struct {
	sizes map[string]int64
	err   error
}

func (s stubCounter) CollectionSizes(context.Context) (map[string]int64, error) {
	return s.sizes, s.err
}

func TestCustomCollector_ExportsSizes(t *testing.T) {
	c := NewCustomCollector(logger.Nop(), stubCounter{sizes: map[string]int64{
		"users":            12,
		"daily_activities": 340,
		"narratives":       5,
	}})

	// three collection gauges plus the scrape status
	assert.Equal(t, 4, testutil.CollectAndCount(c))
}

func TestCustomCollector_ReportsScrapeFailure(t *testing.T) {
	c := NewCustomCollector(logger.Nop(), stubCounter{err: errors.New("connection refused")})

	assert.Equal(t, 1, testutil.CollectAndCount(c, "kbmetrics_collector_scrape_error"))
	assert.Equal(t, 0, testutil.CollectAndCount(c, "kbmetrics_collection_documents"))
}

func TestRecordBulkInsert(t *testing.T) {
	before := testutil.ToFloat64(BulkInsertDocuments.WithLabelValues("daily_activities", "duplicate"))

	RecordBulkInsert("daily_activities", 3, 2, 0)

	after := testutil.ToFloat64(BulkInsertDocuments.WithLabelValues("daily_activities", "duplicate"))
	assert.Equal(t, 2.0, after-before)
}
