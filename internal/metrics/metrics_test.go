package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	Register(reg)

	ContactSubmissions.WithLabelValues("recorded").Inc()
	n, err := testutil.GatherAndCount(reg, "portfolio_contact_submissions_total")
	require.NoError(t, err)
	require.Equal(t, 1, n)

	require.Panics(t, func() { Register(reg) })
}
