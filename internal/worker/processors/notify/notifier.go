package notify

import (
	"fmt"

	"mirror/internal/config"
	"mirror/internal/events"
	"mirror/internal/logger"
)

// Notifier turns order-change events into human-readable notifications.
// Delivery downstream is best-effort by contract, so dropping a message on
// failure is acceptable.
type Notifier struct {
	config *config.Config
	logger *logger.Logger
}

func New(cfg *config.Config, logger *logger.Logger) *Notifier {
	return &Notifier{
		config: cfg,
		logger: logger,
	}
}

func (n *Notifier) OrderChanged(event events.OrderEvent) error {
	message := FormatOrderChanged(event)
	n.logger.Info("Notification: %s", message)
	return nil
}

// FormatOrderChanged renders the notification line for one changed order.
func FormatOrderChanged(event events.OrderEvent) string {
	return fmt.Sprintf("order %d is now %s (total %.2f %s)",
		event.OrderID, event.Status, event.Total, event.Currency)
}
