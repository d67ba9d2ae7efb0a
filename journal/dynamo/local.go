package dynamo

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	log "github.com/sirupsen/logrus"
)

// Endpoint is the URL of a DynamoDB local instance.
type Endpoint string

// LocalStore connects to DynamoDB local, creating the table when missing.
func LocalStore(ctx context.Context, endpoint Endpoint, table TableName) (*Store, error) {
	cfg, err := localConfig(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	client := Client(cfg)
	if err := EnsureTable(ctx, client, table); err != nil {
		return nil, err
	}

	return NewStore(client, table), nil
}

func localConfig(ctx context.Context, endpoint Endpoint) (aws.Config, error) {
	resolver := aws.EndpointResolverWithOptionsFunc(
		func(service, region string, options ...interface{}) (aws.Endpoint, error) {
			return aws.Endpoint{URL: string(endpoint), SigningRegion: region}, nil
		},
	)

	return config.LoadDefaultConfig(ctx,
		config.WithRegion("us-east-1"),
		config.WithEndpointResolverWithOptions(resolver),
		config.WithCredentialsProvider(credentials.StaticCredentialsProvider{
			Value: aws.Credentials{
				AccessKeyID: "dummy", SecretAccessKey: "dummy", SessionToken: "dummy",
				Source: "Hard-coded credentials; values are irrelevant for local DynamoDB",
			},
		}))
}

// EnsureTable creates the journal table (pk/sk, pay per request) when it
// does not exist and waits for it to become active.
func EnsureTable(ctx context.Context, client *dynamodb.Client, table TableName) error {
	exists, err := tableExists(ctx, client, table)
	if err != nil || exists {
		return err
	}

	return createTable(ctx, client, table)
}

func tableExists(ctx context.Context, client *dynamodb.Client, table TableName) (bool, error) {
	description, err := client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(table.String())})
	if err != nil {
		var notFound *types.ResourceNotFoundException
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, err
	}

	if description.Table.TableStatus != types.TableStatusActive {
		return false, errors.New("journal table exists but is not active")
	}

	return true, nil
}

func createTable(ctx context.Context, client *dynamodb.Client, table TableName) error {
	log.WithField("table", table.String()).Info("creating journal table")

	_, err := client.CreateTable(
		ctx, &dynamodb.CreateTableInput{
			TableName: aws.String(table.String()),
			AttributeDefinitions: []types.AttributeDefinition{
				{AttributeName: aws.String("pk"), AttributeType: types.ScalarAttributeTypeS},
				{AttributeName: aws.String("sk"), AttributeType: types.ScalarAttributeTypeS},
			},
			KeySchema: []types.KeySchemaElement{
				{AttributeName: aws.String("pk"), KeyType: types.KeyTypeHash},
				{AttributeName: aws.String("sk"), KeyType: types.KeyTypeRange},
			},
			BillingMode: types.BillingModePayPerRequest,
		},
	)
	if err != nil {
		return err
	}

	return dynamodb.NewTableExistsWaiter(client).Wait(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(table.String())}, 2*time.Minute)
}
