package main

import (
	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/weegigs/coin-counter-go/coins"
	"github.com/weegigs/coin-counter-go/journal/dynamo"
	"github.com/weegigs/coin-counter-go/journal/esdbs"
	"github.com/weegigs/coin-counter-go/journal/jetstream"
	"github.com/weegigs/coin-counter-go/support"
)

var counter = wire.NewSet(
	coins.Live,
	counterKey,
	denominations,
	wire.Bind(new(prometheus.Registerer), new(*prometheus.Registry)),
)

func counterKey(cfg *support.Config) coins.Key {
	return coins.Key(cfg.Counter.Key)
}

func denominations(cfg *support.Config) (coins.Denominations, error) {
	return coins.NewDenominations(cfg.Denominations)
}

func tableName(cfg *support.Config) dynamo.TableName {
	return dynamo.TableName(cfg.Dynamo.Table)
}

func endpoint(cfg *support.Config) dynamo.Endpoint {
	return dynamo.Endpoint(cfg.Dynamo.Endpoint)
}

func natsURL(cfg *support.Config) jetstream.URL {
	return jetstream.URL(cfg.NATS.URL)
}

func streamName(cfg *support.Config) jetstream.StreamName {
	return jetstream.StreamName(cfg.NATS.Stream)
}

func esdbURL(cfg *support.Config) esdbs.URL {
	return esdbs.URL(cfg.ESDB.URL)
}
