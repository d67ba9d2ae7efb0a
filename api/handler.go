// Package api serves the coin counter over HTTP/JSON.
package api

import (
	"context"
	"net/http"

	"github.com/NYTimes/gziphandler"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/weegigs/coin-counter-go/coins"
)

// Counter is the store behind the routes.
type Counter interface {
	Denominations() coins.Denominations
	Counts(ctx context.Context) (map[coins.Denomination]int64, error)
	Insert(ctx context.Context, d coins.Denomination) (map[coins.Denomination]int64, error)
	ResetCounts(ctx context.Context) (map[coins.Denomination]int64, error)
	Total(ctx context.Context) (decimal.Decimal, error)
	Add(ctx context.Context, amount decimal.Decimal) (decimal.Decimal, error)
	ResetTotal(ctx context.Context) (decimal.Decimal, error)
}

const (
	GroupCoins = "coins"
	GroupData  = "data"
)

type HandlerOption func(service *httpService)

func Logger(log *zerolog.Logger) HandlerOption {
	return func(service *httpService) {
		service.log = log
	}
}

// Origins restricts cross origin requests. The default allows any origin.
func Origins(origins ...string) HandlerOption {
	return func(service *httpService) {
		service.origins = origins
	}
}

// Groups selects the route groups to mount. Both are mounted by default.
func Groups(groups ...string) HandlerOption {
	return func(service *httpService) {
		service.groups = groups
	}
}

func Gatherer(gatherer prometheus.Gatherer) HandlerOption {
	return func(service *httpService) {
		service.gatherer = gatherer
	}
}

func NewHandler(counter Counter, options ...HandlerOption) http.Handler {
	service := &httpService{
		counter:  counter,
		origins:  []string{"*"},
		groups:   []string{GroupCoins, GroupData},
		validate: newValidator(),
	}
	for _, option := range options {
		option(service)
	}
	if service.log == nil {
		service.log = &log.Logger
	}
	if service.gatherer == nil {
		service.gatherer = prometheus.DefaultGatherer
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/healthz", service.health())
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(service.gatherer, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		if service.serves(GroupCoins) {
			r.Get("/denominations", service.denominations())
			r.Get("/coins", service.getCoins())
			r.Post("/coins/increment", service.increment())
			r.Post("/coins/reset", service.resetCoins())
		}

		if service.serves(GroupData) {
			r.Get("/data", service.getTotal())
			r.Post("/data", service.add())
			r.Delete("/data", service.resetTotal())
		}
	})

	handler := cors.New(cors.Options{
		AllowedOrigins: service.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler(r)

	return otelhttp.NewHandler(gziphandler.GzipHandler(handler), "coins-http")
}

type httpService struct {
	log      *zerolog.Logger
	counter  Counter
	origins  []string
	groups   []string
	gatherer prometheus.Gatherer
	validate *validator.Validate
}

func (service *httpService) serves(group string) bool {
	for _, g := range service.groups {
		if g == group {
			return true
		}
	}

	return false
}
