package processors

import (
	"fmt"

	"mirror/internal/config"
	"mirror/internal/events"
	"mirror/internal/logger"
	"mirror/internal/worker/processors/notify"
)

type EventProcessor struct {
	config   *config.Config
	logger   *logger.Logger
	notifier *notify.Notifier
}

func NewEventProcessor(cfg *config.Config, logger *logger.Logger) *EventProcessor {
	return &EventProcessor{
		config:   cfg,
		logger:   logger,
		notifier: notify.New(cfg, logger),
	}
}

func (ep *EventProcessor) Process(event events.OrderEvent) error {
	switch event.Type {
	case events.EventOrderChanged:
		return ep.notifier.OrderChanged(event)
	default:
		return fmt.Errorf("unknown event type %q", event.Type)
	}
}
