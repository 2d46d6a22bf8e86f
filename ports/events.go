package ports

import "context"

// EventPublisher notifies other instances about auth lifecycle events
type EventPublisher interface {
	PublishLogin(ctx context.Context, account string) error
	PublishLogout(ctx context.Context, account string) error
}
