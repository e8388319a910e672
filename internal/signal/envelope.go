// Package signal defines the envelope external producers post to the relay
// and the broadcast frame the relay fans out to subscribers.
package signal

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DefaultTopic is the broadcast topic subscribers listen on.
const DefaultTopic = "trade-signals"

// ISOFormat matches the millisecond ISO-8601 form browsers produce.
const ISOFormat = "2006-01-02T15:04:05.000Z07:00"

// Kind is the type tag of a signal envelope.
type Kind string

const (
	KindLog            Kind = "log"
	KindTrade          Kind = "trade"
	KindPrice          Kind = "price"
	KindOpportunity    Kind = "opportunity"
	KindRiskUpdate     Kind = "risk_update"
	KindPositionUpdate Kind = "position_update"
)

// Kinds lists every recognized envelope type.
var Kinds = []Kind{KindLog, KindTrade, KindPrice, KindOpportunity, KindRiskUpdate, KindPositionUpdate}

// Valid reports whether k is one of the recognized kinds.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// Envelope is the typed signal an external producer posts to the relay.
// Data is opaque to the relay.
type Envelope struct {
	Type      Kind           `json:"type"`
	Timestamp string         `json:"timestamp,omitempty"`
	Data      map[string]any `json:"data"`
}

// Broadcast is one event on the broadcast topic.
type Broadcast struct {
	Topic   string         `json:"topic"`
	Event   Kind           `json:"event"`
	Payload map[string]any `json:"payload"`
}

// Stamp formats t the way envelope timestamps are written.
func Stamp(t time.Time) string {
	return t.UTC().Format(ISOFormat)
}

// Decode parses a request body into an envelope. A missing timestamp is
// defaulted to now.
func Decode(body []byte, now time.Time) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return Envelope{}, newError(CodeMalformed, err.Error(), err)
	}
	env.Type = Kind(strings.TrimSpace(string(env.Type)))
	if !env.Type.Valid() {
		return Envelope{}, newError(CodeValidation, fmt.Sprintf("unknown signal type %q", env.Type), nil)
	}
	if strings.TrimSpace(env.Timestamp) == "" {
		env.Timestamp = Stamp(now)
	}
	if env.Data == nil {
		env.Data = map[string]any{}
	}
	return env, nil
}

// Broadcast builds the topic event for the envelope. The payload is a copy
// of Data with the envelope timestamp merged over it.
func (e Envelope) Broadcast(topic string) Broadcast {
	if topic == "" {
		topic = DefaultTopic
	}
	payload := make(map[string]any, len(e.Data)+1)
	for k, v := range e.Data {
		payload[k] = v
	}
	payload["timestamp"] = e.Timestamp
	return Broadcast{Topic: topic, Event: e.Type, Payload: payload}
}
