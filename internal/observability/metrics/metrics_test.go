package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectors(t *testing.T) {
	// antes do Init os helpers não fazem nada
	ObservePointQuery("list", time.Millisecond, nil)
	SetGeoIndexPoints(3)

	reg := prometheus.NewRegistry()
	Init(reg, nil)
	// segunda chamada não registra de novo
	Init(reg, nil)

	ObservePointCreated(10*time.Millisecond, nil)
	ObservePointCreated(10*time.Millisecond, errors.New("boom"))
	ObservePointQuery("show", time.Millisecond, nil)
	ObservePointQuery("show", time.Millisecond, nil)
	IncHTTPRequest("GET", "/points/:id", "200")
	IncHTTPRequest("GET", "", "404")
	SetGeoIndexPoints(5)
	AddUploadedBytes(1024)
	AddUploadedBytes(-1)

	assert.Equal(t, 1.0, testutil.ToFloat64(pointsCreated.WithLabelValues(resultSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(pointsCreated.WithLabelValues(resultError)))
	assert.Equal(t, 2.0, testutil.ToFloat64(pointQueries.WithLabelValues("show", resultSuccess)))
	assert.Equal(t, 0.0, testutil.ToFloat64(pointQueries.WithLabelValues("list", resultSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/points/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(httpRequests.WithLabelValues("GET", "unmatched", "404")))
	assert.Equal(t, 5.0, testutil.ToFloat64(geoIndexPoints))
	assert.Equal(t, 1024.0, testutil.ToFloat64(uploadedImageBytes))

	n, err := testutil.GatherAndCount(reg, metricPrefix+"point_query_latency_seconds")
	require.NoError(t, err)
	// operações "show" e "create"
	assert.Equal(t, 2, n)
}
