// Package nats publishes animation activation events on a NATS subject.
package nats

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/srgjo27/seat_animation/internal/core/domain"
)

const DefaultSubject = "animations.activated"

type conn interface {
	Publish(subject string, data []byte) error
	FlushWithContext(ctx context.Context) error
	Close()
}

type Publisher struct {
	nc      conn
	subject string
}

func Connect(url, subject string) (*Publisher, error) {
	nc, err := nats.Connect(url, nats.Name("seatanim"))
	if err != nil {
		return nil, fmt.Errorf("nats: connect: %w", err)
	}

	return newPublisher(nc, subject), nil
}

func newPublisher(nc conn, subject string) *Publisher {
	if subject == "" {
		subject = DefaultSubject
	}

	return &Publisher{nc: nc, subject: subject}
}

// PublishActivated publishes on <subject>.<eventType> and flushes so the
// event is on the wire before a short-lived CLI exits.
func (p *Publisher) PublishActivated(ctx context.Context, event domain.AnimationActivatedEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("nats: marshal event: %w", err)
	}

	subject := p.subject
	if event.EventType != "" {
		subject += "." + event.EventType
	}

	if err := p.nc.Publish(subject, data); err != nil {
		return fmt.Errorf("nats: publish %s: %w", subject, err)
	}

	if err := p.nc.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("nats: flush: %w", err)
	}

	return nil
}

func (p *Publisher) Close() error {
	p.nc.Close()
	return nil
}
