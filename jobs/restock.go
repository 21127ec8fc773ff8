package jobs

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const restockMutation = `mutation Restock($restockAmount: Int!) {
  updateLowStockProducts(restockAmount: $restockAmount) {
    success
    message
    errors
    updatedProducts { id name stock }
  }
}`

// LowStockRestock tops up every product under the low-stock threshold.
type LowStockRestock struct {
	client  *Client
	amount  int
	logPath string
	logger  *zap.Logger
	now     func() time.Time
}

func NewLowStockRestock(client *Client, amount int, logPath string, logger *zap.Logger) *LowStockRestock {
	return &LowStockRestock{client: client, amount: amount, logPath: logPath, logger: logger, now: time.Now}
}

func (j *LowStockRestock) Name() string { return "low-stock-restock" }

func (j *LowStockRestock) Run(ctx context.Context) {
	ts := j.now().Format(logTimeLayout)

	var data struct {
		Result struct {
			Success  bool     `json:"success"`
			Message  string   `json:"message"`
			Errors   []string `json:"errors"`
			Products []struct {
				Name  string `json:"name"`
				Stock int    `json:"stock"`
			} `json:"updatedProducts"`
		} `json:"updateLowStockProducts"`
	}

	var lines []string
	if err := j.client.Execute(ctx, restockMutation, map[string]interface{}{"restockAmount": j.amount}, &data); err != nil {
		j.logger.Error("Low-stock restock failed", zap.Error(err))
		lines = []string{fmt.Sprintf("[%s] Error updating low stock products: %v", ts, err)}
	} else {
		res := data.Result
		msg := res.Message
		if msg == "" {
			msg = "No message returned"
		}
		lines = append(lines, fmt.Sprintf("[%s] %s", ts, msg))
		if len(res.Products) > 0 {
			lines = append(lines, "Updated products:")
			for _, p := range res.Products {
				lines = append(lines, fmt.Sprintf("  - %s: Stock updated to %d", p.Name, p.Stock))
			}
		}
		j.logger.Info("Low-stock restock finished", zap.Bool("success", res.Success), zap.Int("updated", len(res.Products)))
	}

	if err := appendLines(j.logPath, lines...); err != nil {
		j.logger.Error("Restock log write failed", zap.String("path", j.logPath), zap.Error(err))
	}
}
