package driven

import (
	"context"

	"github.com/ericfisherdev/tcpanel/internal/domain/model"
)

// EventPublisher defines the driven port for emitting build status transitions.
type EventPublisher interface {
	PublishStatusChange(ctx context.Context, event model.BuildStatusEvent) error
	Close() error
}
