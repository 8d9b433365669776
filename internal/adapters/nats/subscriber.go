package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/cityradius/internal/core/domain"
)

// maxDeliver bounds redelivery of a query event whose handler keeps failing.
const maxDeliver = 3

// Subscriber consumes query events from the JetStream stream with durable,
// manually acknowledged consumers.
type Subscriber struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	subs []*nats.Subscription
}

// NewSubscriber connects to NATS. The stream is created by the publisher.
func NewSubscriber(url string) (*Subscriber, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, err
	}
	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	return &Subscriber{conn: conn, js: js}, nil
}

// decodeNearbyQuery parses an event payload. Events without an executed_at
// timestamp are rejected.
func decodeNearbyQuery(data []byte) (*domain.NearbyQuery, error) {
	var q domain.NearbyQuery
	if err := json.Unmarshal(data, &q); err != nil {
		return nil, fmt.Errorf("decode nearby query: %w", err)
	}
	if q.ExecutedAt.IsZero() {
		return nil, fmt.Errorf("decode nearby query: missing executed_at")
	}
	return &q, nil
}

// SubscribeNearbyQueries delivers every nearby query event to handler under
// the durable consumer name. Malformed events are terminated; handler
// errors cause redelivery up to maxDeliver times.
func (s *Subscriber) SubscribeNearbyQueries(ctx context.Context, durable string, handler func(ctx context.Context, q *domain.NearbyQuery) error) error {
	sub, err := s.js.Subscribe(SubjectNearby, func(msg *nats.Msg) {
		q, err := decodeNearbyQuery(msg.Data)
		if err != nil {
			_ = msg.Term()
			return
		}
		if err := handler(ctx, q); err != nil {
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.Durable(durable),
		nats.ManualAck(),
		nats.MaxDeliver(maxDeliver),
		nats.BindStream(StreamName),
	)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", SubjectNearby, err)
	}
	s.subs = append(s.subs, sub)
	return nil
}

// Close unsubscribes and drains the connection.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}
