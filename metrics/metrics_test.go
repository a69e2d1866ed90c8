package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRegistration(t *testing.T) {
	collectors := []prometheus.Collector{
		FolderActionsTotal,
		FolderActionDuration,
		OrphanConfigurationsDeleted,
		OrphanCleanupRuns,
		HTTPRequestsTotal,
		HTTPRequestDuration,
	}

	for _, c := range collectors {
		desc := make(chan *prometheus.Desc, 1)
		c.Describe(desc)
		close(desc)

		require.NotNil(t, <-desc, "metric should have a valid descriptor")
	}
}

func TestObserveFolderAction(t *testing.T) {
	FolderActionsTotal.Reset()
	FolderActionDuration.Reset()

	ObserveFolderAction("move", ResultSuccess, time.Now())
	ObserveFolderAction("move", ResultSuccess, time.Now())
	ObserveFolderAction("move", ResultNotFound, time.Now())

	assert.Equal(t, 2.0, testutil.ToFloat64(FolderActionsTotal.WithLabelValues("move", ResultSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(FolderActionsTotal.WithLabelValues("move", ResultNotFound)))
	assert.Equal(t, 1, testutil.CollectAndCount(FolderActionDuration))
}

func TestHandler_ExposesMetrics(t *testing.T) {
	OrphanConfigurationsDeleted.Add(3)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "mediafolder_orphan_configurations_deleted_total")
}
