package dynamo

import (
	"strings"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"

	"github.com/weegigs/coin-counter-go/journal"
)

const (
	changeSetPrefix = "change-set#"
	latestSortKey   = "latest-revision"
)

// changeSet is one append. Its events are stored as a JSON document so the
// payload bytes survive attribute marshalling untouched.
type changeSet struct {
	PartitionKey string            `dynamodbav:"pk"`
	SortKey      string            `dynamodbav:"sk"`
	Events       string            `dynamodbav:"events"`
	Revision     journal.Revision  `dynamodbav:"revision"`
	Timestamp    journal.Timestamp `dynamodbav:"timestamp"`
}

type latestRecord struct {
	PartitionKey string            `dynamodbav:"pk"`
	SortKey      string            `dynamodbav:"sk"`
	Revision     journal.Revision  `dynamodbav:"revision"`
	Timestamp    journal.Timestamp `dynamodbav:"timestamp"`
}

func partitionKey(id journal.StreamId) string {
	return id.Encode().String()
}

func sortKey(revision journal.Revision) string {
	return strings.Join([]string{changeSetPrefix, revision.String()}, "")
}

func newChangeSet(id journal.StreamId, events []journal.Event) (*changeSet, error) {
	encoded, err := json.Marshal(events)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal events")
	}

	last := events[len(events)-1]

	return &changeSet{
		PartitionKey: partitionKey(id),
		SortKey:      sortKey(last.Revision),
		Events:       string(encoded),
		Revision:     last.Revision,
		Timestamp:    last.Timestamp,
	}, nil
}

func (cs *changeSet) recorded() ([]journal.Event, error) {
	var events []journal.Event
	if err := json.Unmarshal([]byte(cs.Events), &events); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal events")
	}

	return events, nil
}

func (cs *changeSet) latest() *latestRecord {
	return &latestRecord{
		PartitionKey: cs.PartitionKey,
		SortKey:      latestSortKey,
		Revision:     cs.Revision,
		Timestamp:    cs.Timestamp,
	}
}
