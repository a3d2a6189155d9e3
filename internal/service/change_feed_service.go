package service

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/customer-service/internal/config"
	"github.com/spec-kit/customer-service/internal/events"
)

// ChangePublisher delivers an encoded event to a named channel.
type ChangePublisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// ChangeFeedService forwards customer events to an external channel.
type ChangeFeedService struct {
	dispatcher events.Dispatcher
	publisher  ChangePublisher
	logger     *zap.Logger
	cfg        config.ChangeFeedConfig
}

// NewChangeFeedService creates the service.
func NewChangeFeedService(dispatcher events.Dispatcher, publisher ChangePublisher, logger *zap.Logger, cfg config.ChangeFeedConfig) *ChangeFeedService {
	return &ChangeFeedService{
		dispatcher: dispatcher,
		publisher:  publisher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to customer events.
func (f *ChangeFeedService) RegisterHandlers() {
	if f.dispatcher == nil || !f.cfg.Enabled() {
		return
	}
	f.dispatcher.Subscribe(events.EventCustomerCreated, f.forward)
	f.dispatcher.Subscribe(events.EventCustomerUpdated, f.forward)
	f.dispatcher.Subscribe(events.EventCustomerDeleted, f.forward)
}

func (f *ChangeFeedService) forward(ctx context.Context, event events.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode %s: %w", event.Type, err)
	}

	if err := f.publisher.Publish(ctx, f.cfg.Channel, payload); err != nil {
		return fmt.Errorf("publish %s to %s: %w", event.Type, f.cfg.Channel, err)
	}

	f.logger.Debug("customer change published",
		zap.String("channel", f.cfg.Channel),
		zap.String("event_type", string(event.Type)),
		zap.Int64("customer_id", event.CustomerID))
	return nil
}
