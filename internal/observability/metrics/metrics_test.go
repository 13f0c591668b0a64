package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	Init(nil, "", nil)

	before := testutil.ToFloat64(pipelineRequests.WithLabelValues("assign", RequestUnresolved))
	IncPipelineRequest("assign", RequestUnresolved)
	assert.Equal(t, before+1, testutil.ToFloat64(pipelineRequests.WithLabelValues("assign", RequestUnresolved)))

	SetPipelineQueue(-4)
	assert.Equal(t, 0.0, testutil.ToFloat64(pipelineQueue))
	SetPipelineQueue(7)
	assert.Equal(t, 7.0, testutil.ToFloat64(pipelineQueue))

	before = testutil.ToFloat64(exportTotal.WithLabelValues("unknown", ResultSuccess))
	ObserveExport("", "", time.Second)
	assert.Equal(t, before+1, testutil.ToFloat64(exportTotal.WithLabelValues("unknown", ResultSuccess)))
}
