package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weegigs/coin-counter-go/coins"
	"github.com/weegigs/coin-counter-go/journal/memory"
)

func newCounter(t *testing.T) *coins.Counter {
	t.Helper()

	store := memory.NewStore()
	metrics, err := coins.NewMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	return coins.NewCounter(
		coins.NewTallyService(store, coins.DefaultDenominations),
		coins.NewTotalService(store),
		coins.DefaultKey,
		coins.DefaultDenominations,
		metrics,
	)
}

type response struct {
	Status int
	Header http.Header
	Body   map[string]any
}

func call(t *testing.T, handler http.Handler, method string, path string, body string) response {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	request := httptest.NewRequest(method, path, reader)
	request.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()

	handler.ServeHTTP(recorder, request)

	decoded := map[string]any{}
	if strings.HasPrefix(recorder.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &decoded))
	}

	return response{Status: recorder.Code, Header: recorder.Header(), Body: decoded}
}

func zeroed() map[string]any {
	return map[string]any{"1": float64(0), "5": float64(0), "10": float64(0), "25": float64(0)}
}

func TestCoinRoutes(t *testing.T) {
	t.Run("returns every denomination at zero initially", func(t *testing.T) {
		handler := NewHandler(newCounter(t))

		res := call(t, handler, http.MethodGet, "/api/coins", "")
		assert.Equal(t, http.StatusOK, res.Status)
		assert.Equal(t, zeroed(), res.Body["counts"])
	})

	t.Run("increments registered denominations", func(t *testing.T) {
		handler := NewHandler(newCounter(t))

		for i := 0; i < 3; i++ {
			res := call(t, handler, http.MethodPost, "/api/coins/increment", `{"denomination":"1"}`)
			require.Equal(t, http.StatusOK, res.Status)
		}

		res := call(t, handler, http.MethodPost, "/api/coins/increment", `{"denomination":5}`)
		assert.Equal(t, http.StatusOK, res.Status)
		assert.Equal(t, true, res.Body["success"])
		assert.Equal(t, map[string]any{"1": float64(3), "5": float64(1), "10": float64(0), "25": float64(0)}, res.Body["counts"])
	})

	t.Run("rejects unknown denominations", func(t *testing.T) {
		handler := NewHandler(newCounter(t))

		for _, body := range []string{`{"denomination":"2"}`, `{}`, `{"denomination":`, ``, `{"denomination":true}`} {
			res := call(t, handler, http.MethodPost, "/api/coins/increment", body)
			assert.Equal(t, http.StatusBadRequest, res.Status, body)
			assert.Equal(t, false, res.Body["success"], body)
			assert.Equal(t, "Invalid denomination", res.Body["error"], body)
		}

		res := call(t, handler, http.MethodGet, "/api/coins", "")
		assert.Equal(t, zeroed(), res.Body["counts"])
	})

	t.Run("reset returns zeroed counts", func(t *testing.T) {
		handler := NewHandler(newCounter(t))

		call(t, handler, http.MethodPost, "/api/coins/increment", `{"denomination":"25"}`)

		res := call(t, handler, http.MethodPost, "/api/coins/reset", "")
		assert.Equal(t, http.StatusOK, res.Status)
		assert.Equal(t, true, res.Body["success"])
		assert.Equal(t, zeroed(), res.Body["counts"])
	})

	t.Run("lists denominations", func(t *testing.T) {
		handler := NewHandler(newCounter(t))

		res := call(t, handler, http.MethodGet, "/api/denominations", "")
		assert.Equal(t, []any{"1", "5", "10", "25"}, res.Body["denominations"])
	})
}

func TestDataRoutes(t *testing.T) {
	t.Run("adds and resets the total", func(t *testing.T) {
		handler := NewHandler(newCounter(t))

		res := call(t, handler, http.MethodGet, "/api/data", "")
		assert.Equal(t, float64(0), res.Body["total"])

		res = call(t, handler, http.MethodPost, "/api/data", `{"coinCount":10}`)
		assert.Equal(t, http.StatusOK, res.Status)
		assert.Equal(t, float64(10), res.Body["total"])

		res = call(t, handler, http.MethodPost, "/api/data", `{"coinCount":5.5}`)
		assert.Equal(t, float64(15.5), res.Body["total"])

		res = call(t, handler, http.MethodDelete, "/api/data", "")
		assert.Equal(t, http.StatusOK, res.Status)
		assert.Equal(t, float64(0), res.Body["total"])
	})

	t.Run("rejects invalid amounts", func(t *testing.T) {
		handler := NewHandler(newCounter(t))

		for _, body := range []string{`{"coinCount":0}`, `{"coinCount":-2}`, `{"coinCount":"abc"}`, `{}`, `not json`} {
			res := call(t, handler, http.MethodPost, "/api/data", body)
			assert.Equal(t, http.StatusBadRequest, res.Status, body)
			assert.Equal(t, "Invalid amount", res.Body["error"], body)
		}

		res := call(t, handler, http.MethodGet, "/api/data", "")
		assert.Equal(t, float64(0), res.Body["total"])
	})

	t.Run("accepts quoted amounts", func(t *testing.T) {
		handler := NewHandler(newCounter(t))

		res := call(t, handler, http.MethodPost, "/api/data", `{"coinCount":"2.25"}`)
		assert.Equal(t, http.StatusOK, res.Status)
		assert.Equal(t, float64(2.25), res.Body["total"])
	})
}

type failingCounter struct {
	*coins.Counter
}

var errBackend = errors.New("backend unavailable")

func (failingCounter) Counts(context.Context) (map[coins.Denomination]int64, error) {
	return nil, errBackend
}

func (failingCounter) Add(context.Context, decimal.Decimal) (decimal.Decimal, error) {
	return decimal.Zero, errBackend
}

func TestBackendFailures(t *testing.T) {
	handler := NewHandler(failingCounter{Counter: newCounter(t)})

	res := call(t, handler, http.MethodGet, "/api/coins", "")
	assert.Equal(t, http.StatusInternalServerError, res.Status)
	assert.Equal(t, false, res.Body["success"])

	res = call(t, handler, http.MethodPost, "/api/data", `{"coinCount":1}`)
	assert.Equal(t, http.StatusInternalServerError, res.Status)
}

func TestGroups(t *testing.T) {
	handler := NewHandler(newCounter(t), Groups(GroupCoins))

	res := call(t, handler, http.MethodGet, "/api/coins", "")
	assert.Equal(t, http.StatusOK, res.Status)

	res = call(t, handler, http.MethodGet, "/api/data", "")
	assert.Equal(t, http.StatusNotFound, res.Status)
}

func TestCrossOrigin(t *testing.T) {
	handler := NewHandler(newCounter(t))

	request := httptest.NewRequest(http.MethodGet, "/api/coins", nil)
	request.Header.Set("Origin", "http://localhost:5173")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	assert.Contains(t, []string{"*", "http://localhost:5173"}, recorder.Header().Get("Access-Control-Allow-Origin"))

	restricted := NewHandler(newCounter(t), Origins("https://coins.example.com"))

	request = httptest.NewRequest(http.MethodGet, "/api/coins", nil)
	request.Header.Set("Origin", "http://localhost:5173")
	recorder = httptest.NewRecorder()
	restricted.ServeHTTP(recorder, request)

	assert.Empty(t, recorder.Header().Get("Access-Control-Allow-Origin"))
}

func TestOperationalRoutes(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics, err := coins.NewMetrics(registry)
	require.NoError(t, err)

	store := memory.NewStore()
	counter := coins.NewCounter(coins.NewTallyService(store, coins.DefaultDenominations), coins.NewTotalService(store), coins.DefaultKey, coins.DefaultDenominations, metrics)
	handler := NewHandler(counter, Gatherer(registry))

	res := call(t, handler, http.MethodGet, "/healthz", "")
	assert.Equal(t, "ok", res.Body["status"])

	call(t, handler, http.MethodPost, "/api/coins/increment", `{"denomination":"10"}`)

	request := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `coins_inserted_total{denomination="10"} 1`)
}
