package jobs

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2025, 3, 14, 9, 5, 7, 0, time.UTC)

func graphQLServer(t *testing.T, handle func(req gqlRequest) (int, string)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req gqlRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		status, body := handle(req)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func readLog(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

func TestHeartbeat_AppendsAliveAndHello(t *testing.T) {
	srv := graphQLServer(t, func(req gqlRequest) (int, string) {
		assert.Equal(t, helloQuery, req.Query)
		return http.StatusOK, `{"data":{"hello":"Hello, GraphQL!"}}`
	})
	path := filepath.Join(t.TempDir(), "heartbeat.log")

	h := NewHeartbeat(NewClient(srv.URL, time.Second), path, zap.NewNop())
	h.now = func() time.Time { return fixedNow }
	h.Run(context.Background())
	h.Run(context.Background())

	want := "14/03/2025-09:05:07 CRM is alive\n14/03/2025-09:05:07 GraphQL endpoint is responsive: Hello, GraphQL!\n"
	assert.Equal(t, want+want, readLog(t, path))
}

func TestHeartbeat_EndpointDown(t *testing.T) {
	srv := graphQLServer(t, func(gqlRequest) (int, string) { return http.StatusOK, `{}` })
	srv.Close()
	path := filepath.Join(t.TempDir(), "heartbeat.log")

	h := NewHeartbeat(NewClient(srv.URL, time.Second), path, zap.NewNop())
	h.now = func() time.Time { return fixedNow }
	h.Run(context.Background())

	lines := strings.Split(strings.TrimSpace(readLog(t, path)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "14/03/2025-09:05:07 CRM is alive", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "14/03/2025-09:05:07 GraphQL endpoint check failed: "))
}

func TestOrderReminders_ListsPendingOrders(t *testing.T) {
	srv := graphQLServer(t, func(req gqlRequest) (int, string) {
		assert.Equal(t, "2025-03-07", req.Variables["since"])
		return http.StatusOK, `{"data":{"allOrders":[
			{"id":"T3JkZXJUeXBlOjE=","orderDate":"2025-03-10T12:00:00Z","customer":{"email":"alice@example.com"}},
			{"id":"T3JkZXJUeXBlOjI=","orderDate":"2025-03-12T08:30:00Z","customer":{"email":"bob@example.com"}}
		]}}`
	})
	path := filepath.Join(t.TempDir(), "reminders.log")

	r := NewOrderReminders(NewClient(srv.URL, time.Second), path, zap.NewNop())
	r.now = func() time.Time { return fixedNow }
	r.Run(context.Background())

	assert.Equal(t, strings.Join([]string{
		"2025-03-14 09:05:07 - Found 2 pending order(s):",
		"  - Order ID: T3JkZXJUeXBlOjE=, Customer: alice@example.com, Date: 2025-03-10T12:00:00Z",
		"  - Order ID: T3JkZXJUeXBlOjI=, Customer: bob@example.com, Date: 2025-03-12T08:30:00Z",
	}, "\n")+"\n", readLog(t, path))
}

func TestOrderReminders_NoneFound(t *testing.T) {
	srv := graphQLServer(t, func(gqlRequest) (int, string) {
		return http.StatusOK, `{"data":{"allOrders":[]}}`
	})
	path := filepath.Join(t.TempDir(), "reminders.log")

	r := NewOrderReminders(NewClient(srv.URL, time.Second), path, zap.NewNop())
	r.now = func() time.Time { return fixedNow }
	r.Run(context.Background())

	assert.Equal(t, "2025-03-14 09:05:07 - No pending orders found in the last 7 days.\n", readLog(t, path))
}

func TestOrderReminders_GraphQLError(t *testing.T) {
	srv := graphQLServer(t, func(gqlRequest) (int, string) {
		return http.StatusOK, `{"data":null,"errors":[{"message":"invalid filter"}]}`
	})
	path := filepath.Join(t.TempDir(), "reminders.log")

	r := NewOrderReminders(NewClient(srv.URL, time.Second), path, zap.NewNop())
	r.now = func() time.Time { return fixedNow }
	r.Run(context.Background())

	assert.Equal(t, "2025-03-14 09:05:07 - Error processing order reminders: graphql: invalid filter\n", readLog(t, path))
}

func TestLowStockRestock_LogsUpdatedProducts(t *testing.T) {
	srv := graphQLServer(t, func(req gqlRequest) (int, string) {
		assert.Equal(t, float64(20), req.Variables["restockAmount"])
		return http.StatusOK, `{"data":{"updateLowStockProducts":{"success":true,"message":"Restocked 2 product(s)","errors":null,
			"updatedProducts":[{"id":"a","name":"Monitor","stock":25},{"id":"b","name":"Laptop","stock":29}]}}}`
	})
	path := filepath.Join(t.TempDir(), "restock.log")

	j := NewLowStockRestock(NewClient(srv.URL, time.Second), 20, path, zap.NewNop())
	j.now = func() time.Time { return fixedNow }
	j.Run(context.Background())

	assert.Equal(t, strings.Join([]string{
		"[2025-03-14 09:05:07] Restocked 2 product(s)",
		"Updated products:",
		"  - Monitor: Stock updated to 25",
		"  - Laptop: Stock updated to 29",
	}, "\n")+"\n", readLog(t, path))
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls int32
	srv := graphQLServer(t, func(gqlRequest) (int, string) {
		if atomic.AddInt32(&calls, 1) < 3 {
			return http.StatusBadGateway, `{}`
		}
		return http.StatusOK, `{"data":{"hello":"Hello, GraphQL!"}}`
	})

	var out struct{ Hello string }
	err := NewClient(srv.URL, time.Second).Execute(context.Background(), helloQuery, nil, &out)
	require.NoError(t, err)
	assert.Equal(t, "Hello, GraphQL!", out.Hello)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

type countingJob struct{ runs int32 }

func (c *countingJob) Name() string { return "counting" }

func (c *countingJob) Run(context.Context) { atomic.AddInt32(&c.runs, 1) }

type panickyJob struct{}

func (panickyJob) Name() string { return "panicky" }

func (panickyJob) Run(context.Context) { panic("boom") }

func TestScheduler_RunsUntilCancelled(t *testing.T) {
	job := &countingJob{}
	ctx, cancel := context.WithCancel(context.Background())
	s := NewScheduler(time.Second, zap.NewNop(),
		Schedule{Job: job, Interval: 10 * time.Millisecond, RunOnStart: true},
		Schedule{Job: panickyJob{}, Interval: 10 * time.Millisecond, RunOnStart: true},
	)

	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&job.runs) >= 3 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}
