package jetstream

import (
	"github.com/google/wire"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/weegigs/coin-counter-go/journal"
)

type URL string
type StreamName string

var Live = wire.NewSet(
	Connect,
	NewNamedStore,
	wire.Bind(new(journal.Store), new(*Store)),
)

func Connect(url URL) (*nats.Conn, func(), error) {
	connection, err := nats.Connect(string(url), nats.Name("coin-counter"))
	if err != nil {
		return nil, nil, err
	}

	return connection, func() {
		if err := connection.Drain(); err != nil {
			log.Err(err).Msg("nats connection failed to drain")
		}
	}, nil
}

func NewNamedStore(name StreamName, connection *nats.Conn) (*Store, error) {
	return NewStore(string(name), connection)
}
