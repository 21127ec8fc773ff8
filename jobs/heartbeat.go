package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const (
	heartbeatLayout = "02/01/2006-15:04:05"
	helloQuery      = `{ hello }`
)

// Heartbeat records that the CRM is alive and whether its GraphQL endpoint
// answers.
type Heartbeat struct {
	client  *Client
	logPath string
	logger  *zap.Logger
	now     func() time.Time
}

func NewHeartbeat(client *Client, logPath string, logger *zap.Logger) *Heartbeat {
	return &Heartbeat{client: client, logPath: logPath, logger: logger, now: time.Now}
}

func (h *Heartbeat) Name() string { return "heartbeat" }

// Run never fails; problems end up in the log file.
func (h *Heartbeat) Run(ctx context.Context) {
	ts := h.now().Format(heartbeatLayout)
	lines := []string{ts + " CRM is alive"}

	var data struct {
		Hello string `json:"hello"`
	}
	if err := h.client.Execute(ctx, helloQuery, nil, &data); err != nil {
		h.logger.Warn("Heartbeat GraphQL check failed", zap.Error(err))
		lines = append(lines, ts+" GraphQL endpoint check failed: "+err.Error())
	} else {
		lines = append(lines, ts+" GraphQL endpoint is responsive: "+data.Hello)
	}

	if err := appendLines(h.logPath, lines...); err != nil {
		h.logger.Error("Heartbeat log write failed", zap.String("path", h.logPath), zap.Error(err))
	}
}
