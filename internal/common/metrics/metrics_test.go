package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestsTotal_CountsByLabel(t *testing.T) {
	before := testutil.ToFloat64(RequestsTotal.WithLabelValues("addNote", OutcomeOK))

	RequestsTotal.WithLabelValues("addNote", OutcomeOK).Inc()
	RequestsTotal.WithLabelValues("addNote", OutcomeNullResult).Inc()

	assert.Equal(t, before+1, testutil.ToFloat64(RequestsTotal.WithLabelValues("addNote", OutcomeOK)))
}

func TestPush(t *testing.T) {
	var gotMethod, gotPath, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "push_test_total", Help: "test"})
	reg.MustRegister(counter)
	counter.Inc()

	err := Push(context.Background(), server.URL, "card_submitter", reg)
	require.NoError(t, err)

	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/metrics/job/card_submitter", gotPath)
	assert.NotEmpty(t, gotBody)
}

func TestPush_GatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	err := Push(context.Background(), server.URL, "card_submitter", prometheus.NewRegistry())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to push metrics")
}
