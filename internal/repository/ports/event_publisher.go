package ports

import "context"

type EventPublisher interface {
	Publish(ctx context.Context, subject string, payload any) error
}
