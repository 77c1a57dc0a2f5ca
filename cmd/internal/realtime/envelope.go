package realtime

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"time"
)

// Envelope is the wire frame pushed to connected clients. Delivery is
// one-way: the server never reads envelopes from clients.
type Envelope struct {
	Event   string          `json:"event"`
	ID      string          `json:"id"`
	TS      time.Time       `json:"ts"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func newEnvelope(event string, payload any, ts time.Time) (Envelope, error) {
	var raw json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return Envelope{}, err
		}
		raw = b
	}
	return Envelope{
		Event:   event,
		ID:      newRandomHex(10),
		TS:      ts,
		Payload: raw,
	}, nil
}

// newRandomHex returns a cryptographically secure random hex string of
// length 2*nBytes. Empty on the (extremely rare) rand failure.
func newRandomHex(nBytes int) string {
	if nBytes <= 0 {
		nBytes = 16
	}
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return ""
	}
	return hex.EncodeToString(b)
}
