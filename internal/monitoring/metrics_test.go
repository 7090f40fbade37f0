package monitoring

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farhan-ahmed1/settle/internal/aggregate"
	"github.com/farhan-ahmed1/settle/internal/task"
	"github.com/farhan-ahmed1/settle/pkg/client"
)

func TestMetrics_ObserveFetch(t *testing.T) {
	m := NewMetrics("test")

	m.ObserveFetch("https://example.com", 10*time.Millisecond, nil)
	m.ObserveFetch("https://example.com", 20*time.Millisecond, nil)
	m.ObserveFetch("https://example.com", 5*time.Millisecond, errors.New("Boom"))

	assert.Equal(t, float64(2), testutil.ToFloat64(m.fetchTotal.WithLabelValues("success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.fetchTotal.WithLabelValues("failure")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.fetchDuration))

	snap := m.Snapshot()
	assert.Equal(t, int64(3), snap.Fetches)
	assert.Equal(t, int64(1), snap.FetchFailures)
}

func TestMetrics_ObserveAggregate(t *testing.T) {
	m := NewMetrics("test")

	m.ObserveAggregate(aggregate.Report{
		Tasks:         2,
		FailedIndex:   -1,
		Waited:        time.Millisecond,
		TaskDurations: []time.Duration{2 * time.Millisecond, 4 * time.Millisecond},
	})
	m.ObserveAggregate(aggregate.Report{
		Tasks:         3,
		Failed:        2,
		FailedIndex:   0,
		Waited:        time.Millisecond,
		TaskDurations: []time.Duration{3 * time.Millisecond, 3 * time.Millisecond, 3 * time.Millisecond},
	})

	assert.Equal(t, float64(1), testutil.ToFloat64(m.batchTotal.WithLabelValues("success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.batchTotal.WithLabelValues("failure")))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.tasksTotal.WithLabelValues("success")))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.tasksTotal.WithLabelValues("failure")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.unreportedFails))

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.Batches)
	assert.Equal(t, int64(1), snap.BatchFailures)
	assert.Equal(t, int64(5), snap.TasksSettled)
	assert.Equal(t, int64(2), snap.TasksFailed)
	assert.Equal(t, 3*time.Millisecond, snap.AvgTaskDuration)
	assert.False(t, snap.LastBatchFailure.IsZero())
}

func TestMetrics_EmptyBatch(t *testing.T) {
	m := NewMetrics("test")

	m.ObserveAggregate(aggregate.Report{FailedIndex: -1})

	snap := m.Snapshot()
	assert.Equal(t, int64(1), snap.Batches)
	assert.Equal(t, time.Duration(0), snap.AvgTaskDuration)
}

func TestMetrics_WiredIntoComponents(t *testing.T) {
	m := NewMetrics("test")

	f, err := client.New(client.Config{
		Endpoint: client.DefaultEndpoint,
		Observer: m,
		Transport: client.TransportFunc(func(ctx context.Context, url string) (*client.Response, error) {
			return &client.Response{Data: "ok"}, nil
		}),
	})
	require.NoError(t, err)
	_, err = f.Fetch(context.Background())
	require.NoError(t, err)

	a := aggregate.New(nil, m)
	aggregate.Run(a, task.Resolved(1), task.Rejected[int](errors.New("x")))

	snap := m.Snapshot()
	assert.Equal(t, int64(1), snap.Fetches)
	assert.Equal(t, int64(1), snap.Batches)
	assert.Equal(t, int64(1), snap.BatchFailures)
}

func TestMetrics_WriteText(t *testing.T) {
	m := NewMetrics("settle")
	m.ObserveFetch("https://example.com", time.Millisecond, nil)

	var buf bytes.Buffer
	require.NoError(t, m.WriteText(&buf))

	output := buf.String()
	assert.Contains(t, output, `settle_fetch_requests_total{result="success"} 1`)
	assert.Contains(t, output, "# TYPE settle_fetch_duration_seconds histogram")
}

func TestMetrics_DefaultNamespace(t *testing.T) {
	m := NewMetrics("")
	m.ObserveAggregate(aggregate.Report{Tasks: 1, FailedIndex: -1, TaskDurations: []time.Duration{0}})

	count, err := testutil.GatherAndCount(m.Registry(), "settle_aggregate_batches_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func BenchmarkMetrics_ObserveAggregate(b *testing.B) {
	m := NewMetrics("bench")
	r := aggregate.Report{Tasks: 4, FailedIndex: -1, TaskDurations: make([]time.Duration, 4)}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m.ObserveAggregate(r)
	}
}
