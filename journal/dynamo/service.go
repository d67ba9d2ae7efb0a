package dynamo

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/google/wire"
	"go.opentelemetry.io/contrib/instrumentation/github.com/aws/aws-sdk-go-v2/otelaws"

	"github.com/weegigs/coin-counter-go/journal"
)

var Live = wire.NewSet(
	Client,
	NewStore,
	wire.Bind(new(journal.Store), new(*Store)),
)

var Local = wire.NewSet(
	LocalStore,
	wire.Bind(new(journal.Store), new(*Store)),
)

func Client(cfg aws.Config) *dynamodb.Client {
	otelaws.AppendMiddlewares(&cfg.APIOptions)
	return dynamodb.NewFromConfig(cfg)
}
