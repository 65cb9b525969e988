// Package events publishes report lifecycle events to RabbitMQ for downstream consumers.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	QueueReportSubmitted = "report.submitted"
	QueueReportVerified  = "report.verified"
)

// ReportSubmitted is published after a team lead's report is committed.
type ReportSubmitted struct {
	ReportID      string `json:"report_id"`
	RefNo         string `json:"ref_no"`
	Date          string `json:"date"`
	FlightName    string `json:"flight_name"`
	Supervisor    string `json:"supervisor"`
	TotalAttended int    `json:"total_attended"`
	SubmittedBy   string `json:"submitted_by"`
	SubmittedAt   string `json:"submitted_at"`
}

// ReportVerified is published after a data analyst verifies a report.
type ReportVerified struct {
	ReportID       string `json:"report_id"`
	RefNo          string `json:"ref_no"`
	TotalAttended  int    `json:"total_attended"`
	IICSTotal      int    `json:"iics_total"`
	GIATotal       int    `json:"gia_total"`
	IICSDifference int    `json:"iics_difference"`
	GIADifference  int    `json:"gia_difference"`
	VerifiedBy     string `json:"verified_by"`
	VerifiedAt     string `json:"verified_at"`
}

type Publisher interface {
	Publish(ctx context.Context, queue string, event any) error
}

// Noop drops every event. Used when no broker is configured.
type Noop struct{}

func (Noop) Publish(context.Context, string, any) error { return nil }

// AMQPPublisher dials the broker per publish. Report traffic is a handful of
// messages per flight, so no connection is held open.
type AMQPPublisher struct {
	url string
}

func NewAMQPPublisher(url string) *AMQPPublisher {
	return &AMQPPublisher{url: url}
}

// Publish declares queue as durable and sends event as a persistent JSON message.
func (p *AMQPPublisher) Publish(ctx context.Context, queue string, event any) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("rabbitmq channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("rabbitmq queue declare: %w", err)
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	return ch.PublishWithContext(ctx, "", queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
}

// NewPublisher returns an AMQP publisher, or Noop when url is empty.
func NewPublisher(url string) Publisher {
	if url == "" {
		return Noop{}
	}
	return NewAMQPPublisher(url)
}
