//go:build wireinject
// +build wireinject

package main

import (
	"context"

	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/weegigs/coin-counter-go/coins"
	"github.com/weegigs/coin-counter-go/journal/dynamo"
	"github.com/weegigs/coin-counter-go/journal/esdbs"
	"github.com/weegigs/coin-counter-go/journal/jetstream"
	"github.com/weegigs/coin-counter-go/journal/memory"
	"github.com/weegigs/coin-counter-go/support"
)

func memoryCounter(cfg *support.Config, registry *prometheus.Registry) (*coins.Counter, func(), error) {
	panic(wire.Build(counter, memory.Live))
}

func dynamoCounter(ctx context.Context, cfg *support.Config, registry *prometheus.Registry) (*coins.Counter, func(), error) {
	panic(wire.Build(counter, support.AWSConfig, tableName, dynamo.Live))
}

func dynamoLocalCounter(ctx context.Context, cfg *support.Config, registry *prometheus.Registry) (*coins.Counter, func(), error) {
	panic(wire.Build(counter, tableName, endpoint, dynamo.Local))
}

func jetstreamCounter(cfg *support.Config, registry *prometheus.Registry) (*coins.Counter, func(), error) {
	panic(wire.Build(counter, natsURL, streamName, jetstream.Live))
}

func esdbCounter(cfg *support.Config, registry *prometheus.Registry) (*coins.Counter, func(), error) {
	panic(wire.Build(counter, esdbURL, esdbs.Live))
}
