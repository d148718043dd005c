package notification

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"dineflow/internal/logger"
	"dineflow/internal/messaging"
	"dineflow/internal/models"
)

// Subscriber consumes post-commit order events and stock alerts and renders
// them as console notifications for merchant staff.
type Subscriber struct {
	orders *messaging.Consumer
	stock  *messaging.Consumer
	logger *logger.Logger
}

// NewSubscriber creates a subscriber over the merchant notification and stock
// alert queues.
func NewSubscriber(orders, stock *messaging.Consumer, log *logger.Logger) *Subscriber {
	return &Subscriber{
		orders: orders,
		stock:  stock,
		logger: log,
	}
}

// Start consumes both queues until ctx is cancelled or a consumer fails.
func (s *Subscriber) Start(ctx context.Context) error {
	requestID := logger.GenerateRequestID()

	s.logger.Info("service_started", "Notification subscriber started", requestID, map[string]interface{}{
		"queues": []string{messaging.QueueMerchantNotifications, messaging.QueueStockAlerts},
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.orders.StartConsuming(gctx, s.handleOrderCreated)
	})
	g.Go(func() error {
		return s.stock.StartConsuming(gctx, s.handleStockDepleted)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	s.logger.Info("service_stopped", "Notification subscriber stopped", requestID, nil)
	return nil
}

// handleOrderCreated processes order-created events from the order exchange.
func (s *Subscriber) handleOrderCreated(ctx context.Context, body []byte) error {
	requestID := logger.GenerateRequestID()

	var event models.OrderCreatedEvent
	if err := messaging.ParseMessage(body, &event); err != nil {
		s.logger.Error("message_parsing_failed", "Dropping unparseable order event", requestID, err, nil)
		return nil
	}

	s.logger.Debug("order_event_received", "Received order created event", requestID, map[string]interface{}{
		"message_id":   event.MessageID,
		"order_number": event.OrderNumber,
		"origin":       event.Origin,
	})

	fmt.Println(formatOrderCreated(&event))

	s.logger.Info("notification_displayed", "Order notification displayed", requestID, map[string]interface{}{
		"merchant_code": event.MerchantCode,
		"order_number":  event.OrderNumber,
		"origin":        event.Origin,
		"order_type":    event.OrderType,
		"total_amount":  event.TotalAmount,
	})

	return nil
}

// handleStockDepleted processes depletion alerts from the stock exchange.
func (s *Subscriber) handleStockDepleted(ctx context.Context, body []byte) error {
	requestID := logger.GenerateRequestID()

	var event models.StockDepletedEvent
	if err := messaging.ParseMessage(body, &event); err != nil {
		s.logger.Error("message_parsing_failed", "Dropping unparseable stock alert", requestID, err, nil)
		return nil
	}

	s.logger.Debug("stock_alert_received", "Received stock depleted event", requestID, map[string]interface{}{
		"message_id": event.MessageID,
		"item_kind":  event.ItemKind,
		"item_id":    event.ItemID,
	})

	fmt.Println(formatStockDepleted(&event))

	s.logger.Info("stock_alert_displayed", "Stock alert displayed", requestID, map[string]interface{}{
		"merchant_code": event.MerchantCode,
		"item_kind":     event.ItemKind,
		"item_id":       event.ItemID,
		"item_name":     event.ItemName,
	})

	return nil
}

// formatOrderCreated creates a human-readable console line for a new order.
func formatOrderCreated(event *models.OrderCreatedEvent) string {
	timestamp := event.CreatedAt.Format("2006-01-02 15:04:05")

	items := "1 item"
	if event.ItemCount != 1 {
		items = fmt.Sprintf("%d items", event.ItemCount)
	}

	switch event.Origin {
	case models.OriginPOS:
		return fmt.Sprintf(
			"🧾 [%s] %s: counter order %s (%s), %s, total %.2f",
			timestamp, event.MerchantCode, event.OrderNumber, event.OrderType, items, event.TotalAmount,
		)
	case models.OriginOnline:
		return fmt.Sprintf(
			"🛒 [%s] %s: online order %s (%s), %s, total %.2f",
			timestamp, event.MerchantCode, event.OrderNumber, event.OrderType, items, event.TotalAmount,
		)
	case models.OriginGroup:
		return fmt.Sprintf(
			"👥 [%s] %s: group order %s from %d participants, %s, total %.2f",
			timestamp, event.MerchantCode, event.OrderNumber, event.Participants, items, event.TotalAmount,
		)
	case models.OriginReservation:
		return fmt.Sprintf(
			"📅 [%s] %s: reservation preorder %s confirmed, %s, total %.2f",
			timestamp, event.MerchantCode, event.OrderNumber, items, event.TotalAmount,
		)
	default:
		return fmt.Sprintf(
			"🛎️ [%s] %s: new order %s (%s), %s, total %.2f",
			timestamp, event.MerchantCode, event.OrderNumber, event.OrderType, items, event.TotalAmount,
		)
	}
}

// formatStockDepleted creates a human-readable console line for a sold-out item.
func formatStockDepleted(event *models.StockDepletedEvent) string {
	timestamp := event.DepletedAt.Format("2006-01-02 15:04:05")

	kind := "menu item"
	if event.ItemKind == models.KindAddon {
		kind = "addon"
	}

	return fmt.Sprintf(
		"⚠️ [%s] %s: %s %q sold out and was taken off the menu",
		timestamp, event.MerchantCode, kind, event.ItemName,
	)
}
