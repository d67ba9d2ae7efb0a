package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weegigs/coin-counter-go/api"
	"github.com/weegigs/coin-counter-go/coins"
	"github.com/weegigs/coin-counter-go/journal/memory"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()

	store := memory.NewStore()
	metrics, err := coins.NewMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	counter := coins.NewCounter(
		coins.NewTallyService(store, coins.DefaultDenominations),
		coins.NewTotalService(store),
		coins.DefaultKey,
		coins.DefaultDenominations,
		metrics,
	)

	server := httptest.NewServer(api.NewHandler(counter))
	t.Cleanup(server.Close)

	return server
}

func TestCoins(t *testing.T) {
	ctx := context.Background()
	c := New(newServer(t).URL)

	counts, err := c.Coins(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"1": 0, "5": 0, "10": 0, "25": 0}, counts)

	for i := 0; i < 3; i++ {
		_, err := c.Increment(ctx, "1")
		require.NoError(t, err)
	}

	counts, err = c.Increment(ctx, "5")
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"1": 3, "5": 1, "10": 0, "25": 0}, counts)

	_, err = c.Increment(ctx, "2")
	var transport *TransportError
	require.ErrorAs(t, err, &transport)
	assert.Equal(t, http.StatusBadRequest, transport.Status)
	assert.Equal(t, "Invalid denomination", transport.Message)

	counts, err = c.ResetCoins(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"1": 0, "5": 0, "10": 0, "25": 0}, counts)

	denominations, err := c.Denominations(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "5", "10", "25"}, denominations)
}

func TestTotal(t *testing.T) {
	ctx := context.Background()
	c := New(newServer(t).URL)

	_, err := c.Add(ctx, decimal.NewFromInt(10))
	require.NoError(t, err)

	total, err := c.Add(ctx, decimal.RequireFromString("5.5"))
	require.NoError(t, err)
	assert.Equal(t, "15.5", total.String())

	total, err = c.Total(ctx)
	require.NoError(t, err)
	assert.Equal(t, "15.5", total.String())

	_, err = c.Add(ctx, decimal.NewFromInt(-1))
	var transport *TransportError
	require.ErrorAs(t, err, &transport)
	assert.Equal(t, "Invalid amount", transport.Message)

	total, err = c.ResetTotal(ctx)
	require.NoError(t, err)
	assert.True(t, total.IsZero())
}

func TestUnreachableServer(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := New(url).Coins(context.Background())

	var transport *TransportError
	require.ErrorAs(t, err, &transport)
	assert.Zero(t, transport.Status)
	assert.NotNil(t, errors.Unwrap(transport))
}

func TestServerErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"success":false,"error":"failed to load coins"}`))
	}))
	defer server.Close()

	_, err := New(server.URL).Coins(context.Background())

	var transport *TransportError
	require.ErrorAs(t, err, &transport)
	assert.Equal(t, http.StatusInternalServerError, transport.Status)
	assert.Equal(t, "server responded 500: failed to load coins", transport.Error())
}

func TestTimeout(t *testing.T) {
	t.Run("requests are unbounded by default", func(t *testing.T) {
		assert.Zero(t, New(DefaultServer).http.Timeout)
	})

	t.Run("bounds requests when configured", func(t *testing.T) {
		release := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer server.Close()
		defer close(release)

		_, err := New(server.URL, WithTimeout(50*time.Millisecond)).Coins(context.Background())

		var transport *TransportError
		require.ErrorAs(t, err, &transport)
		assert.Zero(t, transport.Status)
	})
}
