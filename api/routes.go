package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"
	"github.com/goccy/go-json"

	"github.com/weegigs/coin-counter-go/coins"
)

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type countsResponse struct {
	Counts map[coins.Denomination]int64 `json:"counts"`
}

type mutatedCountsResponse struct {
	Success bool                         `json:"success"`
	Counts  map[coins.Denomination]int64 `json:"counts"`
}

type totalResponse struct {
	Total Amount `json:"total"`
}

type denominationsResponse struct {
	Denominations []string `json:"denominations"`
}

type incrementRequest struct {
	Denomination Label `json:"denomination" validate:"required"`
}

type addRequest struct {
	CoinCount Amount `json:"coinCount" validate:"required,gt=0"`
}

func (service *httpService) fail(w http.ResponseWriter, r *http.Request, err error, message string) {
	status := http.StatusInternalServerError
	if coins.IsInvalidInput(err) {
		status = http.StatusBadRequest
		message = err.Error()
	} else {
		service.log.Error().Err(err).Str("path", r.URL.Path).Msg(message)
	}

	render.Status(r, status)
	render.JSON(w, r, errorResponse{Success: false, Error: message})
}

func (service *httpService) invalid(w http.ResponseWriter, r *http.Request, err error) {
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, errorResponse{Success: false, Error: err.Error()})
}

func (service *httpService) health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]string{"status": "ok"})
	}
}

func (service *httpService) denominations() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, denominationsResponse{Denominations: service.counter.Denominations().Strings()})
	}
}

func (service *httpService) getCoins() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		counts, err := service.counter.Counts(r.Context())
		if err != nil {
			service.fail(w, r, err, "failed to load coins")
			return
		}

		render.JSON(w, r, countsResponse{Counts: counts})
	}
}

func (service *httpService) increment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var request incrementRequest
		if err := service.decode(r, &request); err != nil {
			service.invalid(w, r, coins.InvalidDenomination(coins.Denomination(request.Denomination)))
			return
		}

		counts, err := service.counter.Insert(r.Context(), coins.Denomination(request.Denomination))
		if err != nil {
			service.fail(w, r, err, "failed to insert coin")
			return
		}

		render.JSON(w, r, mutatedCountsResponse{Success: true, Counts: counts})
	}
}

func (service *httpService) resetCoins() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		counts, err := service.counter.ResetCounts(r.Context())
		if err != nil {
			service.fail(w, r, err, "failed to reset coins")
			return
		}

		render.JSON(w, r, mutatedCountsResponse{Success: true, Counts: counts})
	}
}

func (service *httpService) getTotal() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		total, err := service.counter.Total(r.Context())
		if err != nil {
			service.fail(w, r, err, "failed to load total")
			return
		}

		render.JSON(w, r, totalResponse{Total: Amount(total)})
	}
}

func (service *httpService) add() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var request addRequest
		if err := service.decode(r, &request); err != nil {
			service.invalid(w, r, coins.InvalidAmount(""))
			return
		}

		total, err := service.counter.Add(r.Context(), request.CoinCount.Decimal())
		if err != nil {
			service.fail(w, r, err, "failed to add amount")
			return
		}

		render.JSON(w, r, totalResponse{Total: Amount(total)})
	}
}

func (service *httpService) resetTotal() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		total, err := service.counter.ResetTotal(r.Context())
		if err != nil {
			service.fail(w, r, err, "failed to reset total")
			return
		}

		render.JSON(w, r, totalResponse{Total: Amount(total)})
	}
}

var errEmptyBody = errors.New("empty request body")

func (service *httpService) decode(r *http.Request, v any) error {
	if r.Body == nil {
		return errEmptyBody
	}

	if err := json.NewDecoder(r.Body).DecodeContext(r.Context(), v); err != nil {
		return err
	}

	return service.validate.StructCtx(r.Context(), v)
}
