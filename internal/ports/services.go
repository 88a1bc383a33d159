package ports

import (
	"context"

	"github.com/cargaplay/whatsapp-relay/internal/domain/orders"
	"github.com/cargaplay/whatsapp-relay/internal/shared/contracts"
)

// TemplateSender issues one WhatsApp template message. Implementations never retry;
// the returned error tells the caller whether the send happened.
type TemplateSender interface {
	SendTemplate(ctx context.Context, to, templateName string, params []string) error
}

// OrderFetcher reads a single order from the order system.
type OrderFetcher interface {
	// Configured reports whether base URL and credentials are present.
	Configured() bool
	FetchOrder(ctx context.Context, id orders.ID) (*orders.Order, error)
}

// OrderNotifier forwards a completed order to the email automation side channel.
type OrderNotifier interface {
	Configured() bool
	NotifyOrderCompleted(ctx context.Context, n contracts.OrderCompletedNotification) error
}
