// Package service publishes domain events to the message broker.  Event
// delivery is advisory: the mutation that triggered an event has already
// committed, so publish failures are surfaced to the caller but must never
// be allowed to fail the request.
package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/openpoi/poi-directory/internal/queue"
)

const poiChangedQueue = "poi.changed"

// Publisher writes POI change events to a durable queue.  The broker
// connection is established lazily on first publish and reused across
// requests; a failed channel is discarded and redialed on the next event.
// A nil *Publisher is valid and drops every event, which is how the server
// runs when no broker is configured.
type Publisher struct {
	url string

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewPublisher(url string) *Publisher {
	if url == "" {
		return nil
	}
	return &Publisher{url: url}
}

// channel returns the live channel, dialing and declaring the queue when
// none is open.  Callers hold p.mu.
func (p *Publisher) channel() (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	p.reset()

	conn, err := amqp.Dial(p.url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	// Durable declare is idempotent; done once per connection so messages
	// survive broker restarts.
	if _, err := ch.QueueDeclare(poiChangedQueue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	p.conn, p.ch = conn, ch
	return ch, nil
}

func (p *Publisher) reset() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}

// Close releases the broker connection, if any.
func (p *Publisher) Close() {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reset()
}

// PublishPOIChanged sends one event to the poi.changed queue as a
// persistent JSON message.  On a publish failure the channel is torn down
// so the next call starts from a fresh dial.
func (p *Publisher) PublishPOIChanged(ctx context.Context, event queue.POIChangedEvent) error {
	if p == nil {
		return nil
	}
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel()
	if err != nil {
		return err
	}
	err = ch.PublishWithContext(ctx, "", poiChangedQueue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		p.reset()
	}
	return err
}
