package prom_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/offload-dev/offload"
	"github.com/offload-dev/offload/prom"
)

func TestLimiterEventsFeedCollectors(t *testing.T) {
	m := prom.New(prometheus.NewRegistry())

	lim := offload.NewCapacityLimiter(1, m.Hooks())
	require.NoError(t, lim.Acquire(context.Background()))

	require.Equal(t, 1.0, testutil.ToFloat64(m.Acquired))
	require.Equal(t, 1.0, testutil.ToFloat64(m.InFlight))

	admitted := make(chan struct{})
	go func() {
		_ = lim.Acquire(context.Background())
		close(admitted)
	}()

	require.Eventually(t, func() bool {
		return testutil.ToFloat64(m.Waited) == 1.0
	}, 2*time.Second, 2*time.Millisecond, "waiter never counted")

	lim.Release()
	<-admitted
	lim.Release()

	require.Equal(t, 2.0, testutil.ToFloat64(m.Acquired))
	require.Equal(t, 2.0, testutil.ToFloat64(m.Released))
	require.Equal(t, 0.0, testutil.ToFloat64(m.InFlight))
}

func TestAdapterEventsFeedCollectors(t *testing.T) {
	m := prom.New(prometheus.NewRegistry())
	hooks := m.Hooks()

	_, err := offload.Call(context.Background(), func() (int, error) {
		return 1, nil
	}, offload.WithHooks(hooks))
	require.NoError(t, err)

	_, err = offload.Call(context.Background(), func() (int, error) {
		return 0, errors.New("boom")
	}, offload.WithHooks(hooks))
	require.Error(t, err)

	require.Equal(t, 2.0, testutil.ToFloat64(m.TasksSubmitted))
	require.Equal(t, 1.0, testutil.ToFloat64(m.TasksFailed))
	require.Equal(t, 1, testutil.CollectAndCount(m.TaskDuration))
}

func TestRejectionCountedPerLimiterName(t *testing.T) {
	m := prom.New(prometheus.NewRegistry())

	reg := offload.NewRegistry()
	_, err := offload.Call(context.Background(), func() (int, error) {
		return 0, nil
	},
		offload.WithLimiterName("missing"),
		offload.WithRegistry(reg),
		offload.WithHooks(m.Hooks()),
	)
	require.ErrorIs(t, err, offload.ErrNotRegistered)

	require.Equal(t, 1.0, testutil.ToFloat64(m.Rejected.WithLabelValues("missing")))
}
