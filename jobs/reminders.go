package jobs

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const (
	reminderWindow = 7 * 24 * time.Hour
	logTimeLayout  = "2006-01-02 15:04:05"

	pendingOrdersQuery = `query PendingOrders($since: String!) {
  allOrders(filter: {status: "pending", orderDate_Gte: $since}) {
    id
    orderDate
    customer { email }
  }
}`
)

type pendingOrder struct {
	ID        string `json:"id"`
	OrderDate string `json:"orderDate"`
	Customer  struct {
		Email string `json:"email"`
	} `json:"customer"`
}

// OrderReminders lists pending orders placed within the last seven days.
type OrderReminders struct {
	client  *Client
	logPath string
	logger  *zap.Logger
	now     func() time.Time
}

func NewOrderReminders(client *Client, logPath string, logger *zap.Logger) *OrderReminders {
	return &OrderReminders{client: client, logPath: logPath, logger: logger, now: time.Now}
}

func (r *OrderReminders) Name() string { return "order-reminders" }

func (r *OrderReminders) Run(ctx context.Context) {
	now := r.now()
	ts := now.Format(logTimeLayout)
	since := now.Add(-reminderWindow).Format("2006-01-02")

	var data struct {
		AllOrders []pendingOrder `json:"allOrders"`
	}
	var lines []string
	err := r.client.Execute(ctx, pendingOrdersQuery, map[string]interface{}{"since": since}, &data)
	switch {
	case err != nil:
		r.logger.Error("Order reminders failed", zap.Error(err))
		lines = []string{fmt.Sprintf("%s - Error processing order reminders: %v", ts, err)}
	case len(data.AllOrders) == 0:
		lines = []string{ts + " - No pending orders found in the last 7 days."}
	default:
		lines = append(lines, fmt.Sprintf("%s - Found %d pending order(s):", ts, len(data.AllOrders)))
		for _, o := range data.AllOrders {
			lines = append(lines, fmt.Sprintf("  - Order ID: %s, Customer: %s, Date: %s", o.ID, o.Customer.Email, o.OrderDate))
		}
		r.logger.Info("Order reminders processed", zap.Int("pending", len(data.AllOrders)))
	}

	if err := appendLines(r.logPath, lines...); err != nil {
		r.logger.Error("Order reminders log write failed", zap.String("path", r.logPath), zap.Error(err))
	}
}
