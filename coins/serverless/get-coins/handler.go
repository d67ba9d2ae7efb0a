package main

import (
	"context"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/goccy/go-json"
	"github.com/google/wire"
	"github.com/rs/zerolog/log"

	"github.com/weegigs/coin-counter-go/coins"
	"github.com/weegigs/coin-counter-go/journal"
	"github.com/weegigs/coin-counter-go/journal/dynamo"
	"github.com/weegigs/coin-counter-go/support"
)

type GatewayHandler = func(ctx context.Context, event events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error)

type coinsResponse struct {
	Counts   map[coins.Denomination]int64 `json:"counts"`
	Revision journal.Revision             `json:"revision"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Origins are the browser origins allowed to read the tally. "*" allows any.
type Origins []string

// allow picks the Access-Control-Allow-Origin value for a request origin,
// empty when the origin is not allowed.
func (o Origins) allow(origin string) string {
	for _, allowed := range o {
		switch {
		case allowed == "*":
			return "*"
		case origin != "" && strings.EqualFold(allowed, origin):
			return origin
		}
	}

	return ""
}

// createHandler serves the tally for the key in the path, or the configured
// key when the path has none.
func createHandler(tallies *journal.Service[coins.Tally], key coins.Key, origins Origins) GatewayHandler {
	return func(ctx context.Context, event events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
		response, err := serve(ctx, tallies, key, event)
		if err != nil {
			return response, err
		}

		if allowed := origins.allow(event.Headers["origin"]); allowed != "" {
			response.Headers["Access-Control-Allow-Origin"] = allowed
			if allowed != "*" {
				response.Headers["Vary"] = "Origin"
			}
		}

		return response, nil
	}
}

func serve(ctx context.Context, tallies *journal.Service[coins.Tally], key coins.Key, event events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	if event.RequestContext.HTTP.Method != "" && event.RequestContext.HTTP.Method != http.MethodGet {
		return respond(http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
	}

	selected := key
	if k := event.PathParameters["key"]; k != "" {
		selected = coins.Key(k)
	}

	snapshot, err := tallies.Load(ctx, coins.TallyStream(selected))
	if err != nil {
		log.Error().Err(err).Str("key", string(selected)).Msg("failed to load coins")
		return respond(http.StatusInternalServerError, errorResponse{Error: "failed to load coins"})
	}

	return respond(http.StatusOK, coinsResponse{Counts: snapshot.State.Counts, Revision: snapshot.Revision})
}

func respond(status int, body any) (events.APIGatewayV2HTTPResponse, error) {
	encoded, err := json.Marshal(body)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}

	return events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(encoded),
	}, nil
}

func config() (*support.Config, error) {
	return support.Load(nil)
}

func counterKey(cfg *support.Config) coins.Key {
	return coins.Key(cfg.Counter.Key)
}

func denominations(cfg *support.Config) (coins.Denominations, error) {
	return coins.NewDenominations(cfg.Denominations)
}

func origins(cfg *support.Config) Origins {
	return Origins(cfg.CORS.Origins)
}

func tableName(cfg *support.Config) dynamo.TableName {
	return dynamo.TableName(cfg.Dynamo.Table)
}

var Live = wire.NewSet(
	createHandler,
	config,
	counterKey,
	denominations,
	origins,
	tableName,
	support.AWSConfig,
	coins.NewTallyService,
	dynamo.Live,
)
