// Package dynamo keeps journal streams in a single DynamoDB table. Each append
// is one change set item, guarded by a latest-revision item that is written
// in the same transaction.
package dynamo

import (
	"context"
	"errors"
	"time"

	"github.com/avast/retry-go"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"

	"github.com/weegigs/coin-counter-go/journal"
)

type TableName string

func (name TableName) String() string {
	return string(name)
}

type Store struct {
	db       *dynamodb.Client
	table    string
	revision *journal.RevisionGenerator
}

func NewStore(db *dynamodb.Client, table TableName) *Store {
	return &Store{db: db, table: table.String(), revision: journal.NewRevisionGenerator()}
}

func (s *Store) Load(ctx context.Context, id journal.StreamId) (journal.History, error) {
	events, err := s.read(ctx, id)
	if err != nil {
		return journal.History{}, err
	}

	return journal.HistoryOf(id, events), nil
}

func (s *Store) Append(ctx context.Context, id journal.StreamId, options journal.AppendOptions, events ...journal.DomainEvent) (journal.Revision, error) {
	if len(events) == 0 {
		return "", journal.ErrEmptyAppend
	}

	var revision journal.Revision
	err := retry.Do(
		func() error {
			changes, err := s.changeSet(id, options, events)
			if err != nil {
				return err
			}
			revision = changes.Revision

			return s.write(ctx, changes, options.ExpectedRevision)
		},
		retry.Context(ctx),
		retry.RetryIf(func(err error) bool {
			// an unconditional append lost a race for the latest revision; mint
			// fresh revisions and go again
			return errors.Is(err, journal.ErrRevisionConflict) && options.ExpectedRevision == ""
		}),
		retry.Attempts(5),
		retry.Delay(10*time.Millisecond),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return "", err
	}

	return revision, nil
}

// Remove deletes every item for a stream, including the latest-revision
// marker, and reports how many items went.
func (s *Store) Remove(ctx context.Context, id journal.StreamId) (int, error) {
	type record struct {
		PartitionKey string `dynamodbav:"pk"`
		SortKey      string `dynamodbav:"sk"`
	}

	query := expression.Key("pk").Equal(expression.Value(partitionKey(id)))
	projection := expression.NamesList(expression.Name("pk"), expression.Name("sk"))

	expr, err := expression.NewBuilder().WithKeyCondition(query).WithProjection(projection).Build()
	if err != nil {
		return 0, err
	}

	var count int
	var start map[string]types.AttributeValue
	for {
		out, err := s.db.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(s.table),
			ExclusiveStartKey:         start,
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			KeyConditionExpression:    expr.KeyCondition(),
			ProjectionExpression:      expr.Projection(),
			Limit:                     aws.Int32(25),
		})
		if err != nil {
			return count, err
		}

		if len(out.Items) > 0 {
			var items []record
			if err := attributevalue.UnmarshalListOfMaps(out.Items, &items); err != nil {
				return count, err
			}

			actions := make([]types.TransactWriteItem, 0, len(items))
			for _, item := range items {
				key, err := attributevalue.MarshalMap(item)
				if err != nil {
					return count, err
				}

				actions = append(actions, types.TransactWriteItem{
					Delete: &types.Delete{Key: key, TableName: aws.String(s.table)},
				})
			}

			if _, err := s.db.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: actions}); err != nil {
				return count, err
			}

			count += len(items)
		}

		start = out.LastEvaluatedKey
		if start == nil {
			break
		}
	}

	return count, nil
}

func (s *Store) read(ctx context.Context, id journal.StreamId) ([]journal.Event, error) {
	query := expression.Key("pk").Equal(expression.Value(partitionKey(id))).And(
		expression.Key("sk").BeginsWith(changeSetPrefix),
	)

	projection := expression.NamesList(expression.Name("events"))

	expr, err := expression.NewBuilder().WithKeyCondition(query).WithProjection(projection).Build()
	if err != nil {
		return nil, err
	}

	var events []journal.Event
	var start map[string]types.AttributeValue
	for {
		out, err := s.db.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(s.table),
			ExclusiveStartKey:         start,
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			KeyConditionExpression:    expr.KeyCondition(),
			ProjectionExpression:      expr.Projection(),
			ConsistentRead:            aws.Bool(true),
		})
		if err != nil {
			return nil, err
		}

		var items []changeSet
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &items); err != nil {
			return nil, err
		}

		for i := range items {
			recorded, err := items[i].recorded()
			if err != nil {
				return nil, err
			}
			events = append(events, recorded...)
		}

		start = out.LastEvaluatedKey
		if start == nil {
			break
		}
	}

	return events, nil
}

func (s *Store) changeSet(id journal.StreamId, options journal.AppendOptions, events []journal.DomainEvent) (*changeSet, error) {
	now := time.Now()
	timestamp := journal.TimestampFromTime(now)

	recorded := make([]journal.Event, len(events))
	for index, event := range events {
		data, err := journal.MarshalData(event)
		if err != nil {
			return nil, err
		}

		revision := s.revision.NewRevision(now)
		recorded[index] = journal.Event{
			Stream:    id,
			Revision:  revision,
			ID:        journal.EventID(revision),
			Type:      journal.EventTypeOf(event),
			Timestamp: timestamp,
			Metadata:  options.Metadata,
			Data:      data,
		}
	}

	return newChangeSet(id, recorded)
}

func (s *Store) write(ctx context.Context, changes *changeSet, expected journal.Revision) error {
	latest, err := attributevalue.MarshalMap(changes.latest())
	if err != nil {
		return err
	}

	record, err := attributevalue.MarshalMap(changes)
	if err != nil {
		return err
	}

	condition, err := expression.NewBuilder().WithCondition(latestCondition(changes.Revision, expected)).Build()
	if err != nil {
		return err
	}

	_, err = s.db.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				Put: &types.Put{
					Item:                                latest,
					TableName:                           aws.String(s.table),
					ConditionExpression:                 condition.Condition(),
					ExpressionAttributeNames:            condition.Names(),
					ExpressionAttributeValues:           condition.Values(),
					ReturnValuesOnConditionCheckFailure: types.ReturnValuesOnConditionCheckFailureNone,
				},
			},
			{
				Put: &types.Put{
					Item:      record,
					TableName: aws.String(s.table),
				},
			},
		},
	})

	return maybeRevisionConflict(err)
}

func latestCondition(revision journal.Revision, expected journal.Revision) expression.ConditionBuilder {
	if expected == "" {
		return expression.Name("revision").LessThan(expression.Value(revision)).Or(
			expression.AttributeNotExists(expression.Name("revision")),
		)
	}

	if expected == journal.InitialRevision {
		return expression.AttributeNotExists(expression.Name("revision"))
	}

	return expression.Name("revision").Equal(expression.Value(expected))
}

func maybeRevisionConflict(err error) error {
	if err == nil {
		return nil
	}

	var cancelled *types.TransactionCanceledException
	if errors.As(err, &cancelled) {
		for _, reason := range cancelled.CancellationReasons {
			if reason.Code != nil && *reason.Code == "ConditionalCheckFailed" {
				return journal.ErrRevisionConflict
			}
		}
	}

	var api smithy.APIError
	if errors.As(err, &api) && api.ErrorCode() == "ConditionalCheckFailedException" {
		return journal.ErrRevisionConflict
	}

	return err
}
