// Package sequence maps store-assigned sequence numbers onto ULID revisions
// so that they sort the same way the store does.
package sequence

import (
	"encoding/binary"

	"github.com/oklog/ulid/v2"

	"github.com/weegigs/coin-counter-go/journal"
)

// EncodeRevision packs sequence and the event's index within its batch into
// the entropy of a ULID stamped at timestamp (unix millis).
func EncodeRevision(timestamp uint64, sequence uint64, index uint16) (journal.Revision, error) {
	r := &ulid.ULID{}
	if err := r.SetTime(timestamp); err != nil {
		return "", err
	}

	entropy := make([]byte, 10)
	binary.BigEndian.PutUint64(entropy[:8], sequence)
	binary.BigEndian.PutUint16(entropy[8:], index)

	if err := r.SetEntropy(entropy); err != nil {
		return "", err
	}

	return journal.Revision(r.String()), nil
}

func DecodeSequenceNumber(revision journal.Revision) (uint64, error) {
	parsed, err := ulid.Parse(revision.String())
	if err != nil {
		return 0, err
	}

	return binary.BigEndian.Uint64(parsed.Entropy()[:8]), nil
}
