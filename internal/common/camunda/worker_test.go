package camunda

import (
	"testing"

	apperrors "marketpulse/internal/common/errors"
	"marketpulse/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJob(variables string) entities.Job {
	return entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 42, Type: "market-search", Variables: variables}}
}

func TestVariables(t *testing.T) {
	vars, err := Variables(newJob(`{"brand":"Tanishq","searchType":null}`))
	require.NoError(t, err)
	assert.Equal(t, "Tanishq", vars["brand"])
	assert.Contains(t, vars, "searchType")

	vars, err = Variables(newJob(`null`))
	require.NoError(t, err)
	assert.Empty(t, vars)
}

func TestVariables_NotJSON(t *testing.T) {
	_, err := Variables(newJob(`brand=Tanishq`))

	assert.Equal(t, apperrors.ErrCodeInvalidInput, apperrors.Classify(err))
}

func TestInstrument_TracksActiveJobs(t *testing.T) {
	const taskType = "instrument-test"
	var activeDuring float64

	handler := Instrument(taskType, func(client worker.JobClient, job entities.Job) {
		activeDuring = testutil.ToFloat64(metrics.WorkerJobsActive.WithLabelValues(taskType))
	})
	handler(nil, newJob(`{}`))

	assert.Equal(t, float64(1), activeDuring)
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.WorkerJobsActive.WithLabelValues(taskType)))
}
