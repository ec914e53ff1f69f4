package csvproc

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)

	d := NewDecoder(Options{SkipComments: true, Strict: true}, WithMetrics(m))
	require.NoError(t, d.Run(context.Background(), "a,b\n# c\n1,2\n3,4"))
	require.Error(t, d.Run(context.Background(), "a,b\n1,2\n3"))
	require.Error(t, d.Run(context.Background(), ""))

	require.Equal(t, 3.0, testutil.ToFloat64(m.Rows))
	require.Equal(t, 1.0, testutil.ToFloat64(m.Comments))
	require.Equal(t, 1.0, testutil.ToFloat64(m.Passes.WithLabelValues("finished")))
	require.Equal(t, 2.0, testutil.ToFloat64(m.Passes.WithLabelValues("aborted")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.Errors.WithLabelValues("row_length_mismatch")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.Errors.WithLabelValues("empty_input")))

	_, err = NewMetrics(reg)
	require.Error(t, err)
}

func TestMetricsUnregistered(t *testing.T) {
	m, err := NewMetrics(nil)
	require.NoError(t, err)

	d := NewDecoder(Options{}, WithMetrics(m))
	require.NoError(t, d.Run(context.Background(), "a\n1"))
	require.Equal(t, 1.0, testutil.ToFloat64(m.Rows))

	var none *Metrics
	none.rowDelivered()
	none.passDone(StateFinished)
}
