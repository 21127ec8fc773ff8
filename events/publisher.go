package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/humphreyotieno1/alx-backend-graphql-crm/models"
	aws_pkg "github.com/humphreyotieno1/alx-backend-graphql-crm/pkg/aws"
	"go.uber.org/zap"
)

const EventOrderPlaced = "order.placed"

// OrderPublisher fans an order.placed event out to Kafka and SNS. Either
// sink may be absent.
type OrderPublisher struct {
	producer    *Producer
	sns         aws_pkg.SNSPublisher
	snsTopicArn string
	logger      *zap.Logger
}

func NewOrderPublisher(producer *Producer, sns aws_pkg.SNSPublisher, snsTopicArn string, logger *zap.Logger) *OrderPublisher {
	return &OrderPublisher{producer: producer, sns: sns, snsTopicArn: snsTopicArn, logger: logger}
}

// PublishOrderPlaced sends to every configured sink and joins their errors.
func (p *OrderPublisher) PublishOrderPlaced(ctx context.Context, order *models.Order) error {
	payload, err := json.Marshal(NewOrderPlacedEvent(order))
	if err != nil {
		return fmt.Errorf("marshal order event: %w", err)
	}

	var errs []error
	if p.producer != nil {
		if err := p.producer.Send(ctx, order.ID.String(), payload); err != nil {
			errs = append(errs, fmt.Errorf("kafka: %w", err))
		}
	}
	if p.sns != nil && p.snsTopicArn != "" {
		if err := p.sns.Publish(ctx, p.snsTopicArn, payload); err != nil {
			errs = append(errs, fmt.Errorf("sns: %w", err))
		}
	}
	if len(errs) == 0 {
		p.logger.Info("Order event published", zap.String("order_id", order.ID.String()))
	}
	return errors.Join(errs...)
}

func NewOrderPlacedEvent(order *models.Order) models.OrderPlacedEvent {
	evt := models.OrderPlacedEvent{
		EventType:   EventOrderPlaced,
		OrderID:     order.ID.String(),
		CustomerID:  order.CustomerID.String(),
		Email:       order.Customer.Email,
		TotalAmount: order.TotalAmount.StringFixed(2),
		Timestamp:   time.Now().UTC(),
	}
	for _, item := range order.Items {
		evt.Items = append(evt.Items, models.OrderPlacedLineItem{
			ProductID: item.ProductID.String(),
			Quantity:  item.Quantity,
			Price:     item.PriceAtPurchase.StringFixed(2),
		})
	}
	return evt
}
