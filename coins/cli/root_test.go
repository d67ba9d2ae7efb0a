package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weegigs/coin-counter-go/api"
	"github.com/weegigs/coin-counter-go/coins"
	"github.com/weegigs/coin-counter-go/journal/memory"
)

func newServer(t *testing.T) (*httptest.Server, *coins.Counter) {
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

	return server, counter
}

func execute(server string, args ...string) (string, error) {
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs(append([]string{"--server", server}, args...))
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestInsert(t *testing.T) {
	server, counter := newServer(t)

	_, err := execute(server.URL, "insert", "25")
	require.NoError(t, err)
	out, err := execute(server.URL, "insert", "25")
	require.NoError(t, err)

	assert.Contains(t, out, "Coin Counter")
	assert.Contains(t, out, "worth 50")
	assert.Contains(t, out, "insert 25")

	counts, err := counter.Counts(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, counts["25"])
}

func TestInsertRejected(t *testing.T) {
	server, _ := newServer(t)

	out, err := execute(server.URL, "insert", "3")
	assert.Error(t, err)
	assert.Contains(t, out, "Invalid denomination")
}

func TestAddAndReset(t *testing.T) {
	server, counter := newServer(t)

	_, err := execute(server.URL, "add", "10")
	require.NoError(t, err)
	_, err = execute(server.URL, "add", "5.5")
	require.NoError(t, err)

	total, err := counter.Total(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "15.5", total.String())

	out, err := execute(server.URL, "--mode", "data", "get")
	require.NoError(t, err)
	assert.Contains(t, out, "15.5")

	_, err = execute(server.URL, "--mode", "data", "reset")
	require.NoError(t, err)

	total, err = counter.Total(context.Background())
	require.NoError(t, err)
	assert.True(t, total.IsZero())
}

func TestAddValidatesLocally(t *testing.T) {
	server, counter := newServer(t)

	out, err := execute(server.URL, "add", "-3")
	assert.Error(t, err)
	assert.Contains(t, out, "Please enter a positive number")

	total, err := counter.Total(context.Background())
	require.NoError(t, err)
	assert.True(t, total.IsZero())
}

func TestUnknownMode(t *testing.T) {
	server, _ := newServer(t)

	_, err := execute(server.URL, "--mode", "stamps", "get")
	assert.Error(t, err)
}

func TestUnreachableServer(t *testing.T) {
	out, err := execute("http://127.0.0.1:1", "get")
	assert.Error(t, err)
	assert.Contains(t, out, "Failed to load")
}

func TestTimeoutFlag(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	out, err := execute(server.URL, "--timeout", "50ms", "get")
	assert.Error(t, err)
	assert.Contains(t, out, "Failed to load")
}
