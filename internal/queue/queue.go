// Package queue publishes storefront events (checkout submissions, bulk
// catalog changes) onto the platform's topic exchange. The queue is
// optional: with no broker configured, pages behave identically and simply
// skip the publish.
package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const EventsExchange = "storefront.events"

type Client struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

func New(url string) (*Client, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	return &Client{conn: conn, ch: ch}, nil
}

func (c *Client) Close() error {
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

func (c *Client) EnsureExchange(name string) error {
	return c.ch.ExchangeDeclare(
		name,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
}

func (c *Client) PublishJSON(ctx context.Context, exchange, routingKey string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return c.ch.PublishWithContext(ctx, exchange, routingKey, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
		Timestamp:   time.Now(),
	})
}

// OrderSubmittedEvent is published after a successful checkout handoff.
type OrderSubmittedEvent struct {
	MerchantCode string  `json:"merchantCode"`
	OrderMode    string  `json:"orderMode"`
	OrderNumber  string  `json:"orderNumber"`
	DeviceID     string  `json:"deviceId"`
	ItemCount    int     `json:"itemCount"`
	Total        float64 `json:"total"`
	Currency     string  `json:"currency"`
}

func (c *Client) PublishOrderSubmitted(ctx context.Context, event OrderSubmittedEvent) error {
	return c.PublishJSON(ctx, EventsExchange, "order.submitted", event)
}

// BulkUploadEvent records a confirmed catalog batch for downstream audit.
type BulkUploadEvent struct {
	MerchantID   string `json:"merchantId"`
	FileName     string `json:"fileName,omitempty"`
	CreatedCount int    `json:"createdCount"`
	UpdatedCount int    `json:"updatedCount"`
}

func (c *Client) PublishBulkUpload(ctx context.Context, event BulkUploadEvent) error {
	return c.PublishJSON(ctx, EventsExchange, "catalog.bulk-upload", event)
}
