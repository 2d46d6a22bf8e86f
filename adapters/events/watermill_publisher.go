package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/layer-3/l3auth/ports"
)

const (
	// TopicLogin carries successful login events.
	TopicLogin = "l3auth.login"
	// TopicLogout carries session invalidation events.
	TopicLogout = "l3auth.logout"
)

// AuthEvent is the payload published on the auth topics.
type AuthEvent struct {
	Type    string `json:"type"`
	Account string `json:"account"`
}

// WatermillPublisher implements the EventPublisher interface using Watermill
type WatermillPublisher struct {
	publisher message.Publisher
}

// NewWatermillPublisher creates a new Watermill publisher
func NewWatermillPublisher(publisher message.Publisher) *WatermillPublisher {
	return &WatermillPublisher{publisher: publisher}
}

var _ ports.EventPublisher = (*WatermillPublisher)(nil)

// PublishLogin publishes a login event for account.
func (p *WatermillPublisher) PublishLogin(ctx context.Context, account string) error {
	return p.publish(TopicLogin, AuthEvent{Type: "login", Account: account})
}

// PublishLogout publishes a logout event for account.
func (p *WatermillPublisher) PublishLogout(ctx context.Context, account string) error {
	return p.publish(TopicLogout, AuthEvent{Type: "logout", Account: account})
}

func (p *WatermillPublisher) publish(topic string, event AuthEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}
